package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune old deleted-file records and switch history",
	Long: `Remove records of deleted files and folder switches older than the
retention window. The window defaults to the configured
analysis.retention_days.

Examples:
  attnmon cleanup
  attnmon cleanup --days 30`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention window in days (0 = use config)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd, "text")
	if err != nil {
		return err
	}

	ctx := context.Background()
	defer eng.close(ctx)

	days := cleanupDays
	if days <= 0 {
		days = eng.cfg.Analysis.RetentionDays
	}

	n := eng.ledger.Cleanup(ctx, time.Duration(days)*24*time.Hour, time.Now())
	fmt.Printf("Pruned %d records older than %d days\n", n, days)
	return nil
}
