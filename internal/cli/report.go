package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reportList bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the latest analysis report",
	Long: `Print the most recent markdown report, or list all reports on disk.

Examples:
  attnmon report
  attnmon report --list`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportList, "list", false, "list all reports instead of printing the latest")
}

func runReport(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd, "text")
	if err != nil {
		return err
	}
	defer eng.store.Close()

	if reportList {
		return listReports(eng.reports.Dir())
	}

	latest, err := eng.reports.Latest()
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if latest == "" {
		fmt.Println("No reports generated yet. Run `attnmon analyze` first.")
		return nil
	}

	body, err := os.ReadFile(latest)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}
	fmt.Print(string(body))
	return nil
}

func listReports(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading report directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".md" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		fmt.Println("No reports found")
		return nil
	}

	// Newest first; the timestamped names sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d bytes\n", name, info.Size())
	}
	return w.Flush()
}
