package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger statistics",
	Long: `Show summary statistics from the activity ledger: tracked files, total
accesses, recent folder switches, and the time of the last analysis.

Examples:
  attnmon status
  attnmon status --format json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "output format (text, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd, "text")
	if err != nil {
		return err
	}
	defer eng.store.Close()

	stats := eng.analyzer.Stats()

	if statusFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	lastAnalysis := "never"
	if !stats.LastAnalysis.IsZero() {
		lastAnalysis = stats.LastAnalysis.Local().Format("2006-01-02 15:04")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Tracked files:\t%d\n", stats.TrackedFiles)
	fmt.Fprintf(w, "Total accesses:\t%d\n", stats.TotalAccesses)
	fmt.Fprintf(w, "Folder switches (24h):\t%d\n", stats.SwitchesLast24h)
	fmt.Fprintf(w, "Last analysis:\t%s\n", lastAnalysis)
	fmt.Fprintf(w, "Ledger:\t%s\n", eng.cfg.Database.Path)
	fmt.Fprintf(w, "Reports:\t%s\n", eng.reports.Dir())
	return w.Flush()
}
