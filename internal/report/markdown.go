// Package report turns aggregation results into human-readable artifacts.
// Rendering is a pure function of the result; only the Writer touches disk.
package report

import (
	"fmt"
	"strings"

	"github.com/fileops/attnmon/internal/detector"
)

// statusBanner picks the overall status line using the same severity
// priority as finding order: any high forces action, then any medium.
func statusBanner(res *detector.Result) (string, string) {
	switch {
	case len(res.Findings) == 0:
		return "Status: Excellent",
			"No significant attention leaks detected. Your digital workspace is well-organized."
	case res.Counts.High > 0:
		return "Status: Action Required",
			"High-priority attention leaks detected. Review the recommendations below to improve productivity."
	case res.Counts.Medium > 0:
		return "Status: Room for Improvement",
			"Some attention leaks detected. Consider implementing the suggestions to optimize your workflow."
	default:
		return "Status: Good",
			"Minor attention leaks detected. Your workspace is generally well-maintained."
	}
}

// RenderMarkdown produces the full sectioned report document.
func RenderMarkdown(res *detector.Result) string {
	var b strings.Builder

	b.WriteString("# Attention Leak Detection Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", res.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Run ID:** `%s`\n\n", res.RunID)

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "- **Total Leaks Detected:** %d\n", len(res.Findings))
	fmt.Fprintf(&b, "- **Estimated Time Loss:** %.1f minutes\n", res.TotalTimeLossMinutes)
	fmt.Fprintf(&b, "- **Files Tracked:** %d\n\n", res.TrackedFiles)

	b.WriteString("### Severity Breakdown\n\n")
	fmt.Fprintf(&b, "- **High Priority:** %d leaks\n", res.Counts.High)
	fmt.Fprintf(&b, "- **Medium Priority:** %d leaks\n", res.Counts.Medium)
	fmt.Fprintf(&b, "- **Low Priority:** %d leaks\n\n", res.Counts.Low)

	banner, blurb := statusBanner(res)
	fmt.Fprintf(&b, "### %s\n\n%s\n\n", banner, blurb)

	if len(res.Findings) > 0 {
		b.WriteString("---\n\n## Detailed Findings\n\n")
		for i, f := range res.Findings {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, f.Title)
			fmt.Fprintf(&b, "**Severity:** %s\n\n", strings.ToUpper(f.Severity.String()))
			fmt.Fprintf(&b, "**Estimated Time Loss:** %.1f minutes\n\n", f.TimeLossMinutes)
			fmt.Fprintf(&b, "**Description:**\n\n%s\n\n", f.Description)
			if len(f.AffectedItems) > 0 {
				fmt.Fprintf(&b, "**Affected Items (%d shown):**\n\n", len(f.AffectedItems))
				for _, item := range f.AffectedItems {
					fmt.Fprintf(&b, "- `%s`\n", item)
				}
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "**Suggestion:**\n\n%s\n\n---\n\n", f.Suggestion)
		}

		b.WriteString("## Recommended Action Plan\n\n")
		b.WriteString("Based on the detected attention leaks, here's a prioritized action plan:\n\n")
		writePlanSection(&b, "High Priority (Do First)", res.Findings, detector.SeverityHigh)
		writePlanSection(&b, "Medium Priority (Do This Week)", res.Findings, detector.SeverityMedium)
		writePlanSection(&b, "Low Priority (Do When Time Permits)", res.Findings, detector.SeverityLow)
	}

	b.WriteString("---\n\n## Tips for Maintaining a Healthy Digital Workspace\n\n")
	b.WriteString("1. **Regular Cleanup:** Set aside 15 minutes weekly to review and organize files\n")
	b.WriteString("2. **Consistent Naming:** Use clear, consistent file naming conventions\n")
	b.WriteString("3. **Project Organization:** Keep related files together in dedicated folders\n")
	b.WriteString("4. **Delete Aggressively:** If you haven't used it in 30 days, consider deleting it\n")
	b.WriteString("5. **Automation:** Use file organization rules to automatically sort new files\n")
	b.WriteString("6. **Regular Reviews:** Run this analysis weekly to catch issues early\n\n")
	b.WriteString("---\n\n*Report generated by attnmon*\n")

	return b.String()
}

func writePlanSection(b *strings.Builder, heading string, findings []detector.Finding, sev detector.Severity) {
	var matched []detector.Finding
	for _, f := range findings {
		if f.Severity == sev {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, f := range matched {
		fmt.Fprintf(b, "1. **%s**\n   - %s\n\n", f.Title, f.Suggestion)
	}
}
