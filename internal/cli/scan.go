package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var scanWorkers int

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Backfill the ledger from an existing directory tree",
	Long: `Walk a directory tree and seed the activity ledger with the files already
on disk, using each file's modification time as its creation time. No access
events or folder switches are synthesized.

Examples:
  attnmon scan ~/Downloads
  attnmon scan ~/Desktop --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 4, "concurrent stat workers")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]

	// Check if path exists
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("accessing path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	eng, err := openEngine(cmd, "text")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	defer eng.close(ctx)

	n, err := eng.tracker.Backfill(ctx, root, scanWorkers)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Printf("Backfilled %d files from %s\n", n, root)
	return nil
}
