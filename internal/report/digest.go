package report

import (
	"fmt"
	"strings"

	"github.com/fileops/attnmon/internal/detector"
)

// RenderDigest produces a short plain-text summary of the top findings,
// suitable for inline display or log output.
func RenderDigest(res *detector.Result) string {
	var b strings.Builder

	b.WriteString("=== ATTENTION LEAK SUMMARY ===\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", res.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Leaks: %d\n", len(res.Findings))
	fmt.Fprintf(&b, "Estimated Time Loss: %.1f minutes\n\n", res.TotalTimeLossMinutes)

	b.WriteString("Severity Breakdown:\n")
	fmt.Fprintf(&b, "  High:   %d\n", res.Counts.High)
	fmt.Fprintf(&b, "  Medium: %d\n", res.Counts.Medium)
	fmt.Fprintf(&b, "  Low:    %d\n\n", res.Counts.Low)

	if len(res.Findings) > 0 {
		b.WriteString("Top Issues:\n")
		for i, f := range res.Findings {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, f.Title, f.Severity)
			fmt.Fprintf(&b, "     %.1f min loss\n", f.TimeLossMinutes)
		}
	} else {
		b.WriteString("No attention leaks detected. Great job!\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	return b.String()
}
