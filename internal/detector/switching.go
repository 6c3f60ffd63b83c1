package detector

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// ContextSwitching flags bursts of folder navigation in the trailing hour.
type ContextSwitching struct {
	Threshold int // switches per hour before the pattern is flagged
}

// NewContextSwitching creates the detector; threshold <= 0 uses the default
// of 10 switches per hour.
func NewContextSwitching(threshold int) *ContextSwitching {
	if threshold <= 0 {
		threshold = 10
	}
	return &ContextSwitching{Threshold: threshold}
}

func (d *ContextSwitching) Name() string { return CategoryContextSwitching }

func (d *ContextSwitching) Scan(snap *ledger.Snapshot, now time.Time) []Finding {
	hourAgo := now.Add(-time.Hour)
	visits := make(map[string]int)
	n := 0
	for _, sw := range snap.Switches {
		if sw.At.Before(hourAgo) {
			continue
		}
		visits[sw.Folder]++
		n++
	}
	if n < d.Threshold {
		return nil
	}

	severity := SeverityLow
	switch {
	case n > 30:
		severity = SeverityHigh
	case n >= 20:
		severity = SeverityMedium
	}

	folders := make([]string, 0, len(visits))
	for folder := range visits {
		folders = append(folders, folder)
	}
	sort.Slice(folders, func(i, j int) bool {
		if visits[folders[i]] != visits[folders[j]] {
			return visits[folders[i]] > visits[folders[j]]
		}
		return folders[i] < folders[j]
	})
	var items []string
	for _, folder := range capItems(folders, 5) {
		items = append(items, fmt.Sprintf("%s: %d visits", filepath.Base(folder), visits[folder]))
	}

	return []Finding{{
		Category: CategoryContextSwitching,
		Severity: severity,
		Title:    fmt.Sprintf("High Context Switching: %d Folder Changes", n),
		Description: fmt.Sprintf(
			"Detected %d folder switches in the last hour across %d different folders. "+
				"Frequent switching between unrelated folders fragments attention and reduces productivity.",
			n, len(visits)),
		Suggestion: "Group related work in fewer folders. Use project-based organization and " +
			"keep a dedicated working folder for active tasks. File shortcuts reduce navigation.",
		TimeLossMinutes: float64(n) * 15 / 60, // 15 seconds of mental overhead per switch
		AffectedItems:   items,
	}}
}
