package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fileops/attnmon/internal/report"
)

var (
	analyzeFormat string
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run attention-leak analysis now",
	Long: `Run the full detector battery over the activity ledger, write a markdown
report, and print a summary.

Examples:
  attnmon analyze
  attnmon analyze --format json
  attnmon analyze --no-report`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format (text, json)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-report", false, "skip writing the markdown report")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd, "text")
	if err != nil {
		return err
	}

	ctx := context.Background()
	defer eng.close(ctx)

	res := eng.analyzer.Analyze(ctx)

	var reportPath string
	if !analyzeNoSave {
		reportPath, err = eng.reports.Write(res)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	switch analyzeFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	default:
		fmt.Println(report.RenderDigest(res))
	}

	if reportPath != "" {
		fmt.Printf("Report written to %s\n", reportPath)
	}
	return nil
}
