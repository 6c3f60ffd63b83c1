package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// ColdFiles flags files that were created but never opened. Records whose
// file is already gone from disk are skipped.
type ColdFiles struct {
	MinAge time.Duration
	Exists func(string) bool
}

// NewColdFiles creates the detector; minAge <= 0 uses the 7 day default.
func NewColdFiles(minAge time.Duration) *ColdFiles {
	if minAge <= 0 {
		minAge = 7 * 24 * time.Hour
	}
	return &ColdFiles{MinAge: minAge, Exists: fileExists}
}

func (d *ColdFiles) Name() string { return CategoryColdFiles }

func (d *ColdFiles) Scan(snap *ledger.Snapshot, now time.Time) []Finding {
	var (
		paths      []string
		totalBytes int64
	)
	for _, rec := range snap.Files {
		if rec.Deleted || rec.AccessCount != 0 {
			continue
		}
		if now.Sub(rec.CreatedAt) < d.MinAge {
			continue
		}
		if !d.Exists(rec.Path) {
			continue
		}
		paths = append(paths, rec.Path)
		totalBytes += rec.Size
	}
	if len(paths) == 0 {
		return nil
	}

	n := len(paths)
	severity := SeverityLow
	switch {
	case n > 50:
		severity = SeverityHigh
	case n >= 20:
		severity = SeverityMedium
	}

	sort.Strings(paths)
	days := int(d.MinAge.Hours() / 24)

	return []Finding{{
		Category: CategoryColdFiles,
		Severity: severity,
		Title:    fmt.Sprintf("%d Cold Files Detected", n),
		Description: fmt.Sprintf(
			"Found %d files created %d+ days ago that were never opened, wasting %.1fMB of storage. "+
				"These files clutter your workspace and create visual noise.",
			n, days, float64(totalBytes)/(1<<20)),
		Suggestion: "Review and delete unused files. Consider automated cleanup rules " +
			"for file types you frequently download but never use.",
		TimeLossMinutes: float64(n) * 5 / 60, // 5 seconds per file to scan and decide
		AffectedItems:   capItems(paths, 10),
	}}
}
