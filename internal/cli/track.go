package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track <created|accessed|deleted|switch> <path>",
	Short: "Record a single file activity event",
	Long: `Record one file activity event in the ledger. Useful for shell hooks and
file-manager integrations that observe activity outside the daemon.

Examples:
  attnmon track created ~/Downloads/report.pdf
  attnmon track accessed ~/projects/notes.md
  attnmon track switch ~/projects/webapp`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func runTrack(cmd *cobra.Command, args []string) error {
	event, path := args[0], args[1]

	eng, err := openEngine(cmd, "text")
	if err != nil {
		return err
	}

	ctx := context.Background()
	defer eng.close(ctx)

	switch event {
	case "created":
		eng.tracker.RecordCreated(ctx, path)
	case "accessed":
		eng.tracker.RecordAccessed(ctx, path)
	case "deleted":
		eng.tracker.RecordDeleted(ctx, path)
	case "switch":
		eng.tracker.RecordFolderSwitch(ctx, path)
	default:
		return fmt.Errorf("unknown event %q: must be created, accessed, deleted, or switch", event)
	}

	return nil
}
