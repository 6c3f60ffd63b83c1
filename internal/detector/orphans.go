package detector

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// OrphanedFolders flags folders holding a meaningful number of files whose
// most recent activity is far in the past.
type OrphanedFolders struct {
	InactiveFor time.Duration // inactivity before a folder is orphaned
	MinFiles    int           // files a folder must hold to qualify
}

// NewOrphanedFolders creates the detector; zero arguments use the defaults
// (30 days inactivity, 5 files minimum).
func NewOrphanedFolders(inactiveFor time.Duration, minFiles int) *OrphanedFolders {
	if inactiveFor <= 0 {
		inactiveFor = 30 * 24 * time.Hour
	}
	if minFiles <= 0 {
		minFiles = 5
	}
	return &OrphanedFolders{InactiveFor: inactiveFor, MinFiles: minFiles}
}

func (d *OrphanedFolders) Name() string { return CategoryOrphanedFolders }

type folderActivity struct {
	last  time.Time
	count int
}

func (d *OrphanedFolders) Scan(snap *ledger.Snapshot, now time.Time) []Finding {
	activity := make(map[string]*folderActivity)
	for _, rec := range snap.Files {
		if rec.Deleted {
			continue
		}
		last := rec.LastAccessed
		if last.IsZero() {
			last = rec.CreatedAt
		}
		fa := activity[rec.ParentFolder]
		if fa == nil {
			fa = &folderActivity{}
			activity[rec.ParentFolder] = fa
		}
		fa.count++
		if last.After(fa.last) {
			fa.last = last
		}
	}

	var orphaned []string
	totalFiles := 0
	for folder, fa := range activity {
		if fa.count >= d.MinFiles && now.Sub(fa.last) >= d.InactiveFor {
			orphaned = append(orphaned, folder)
			totalFiles += fa.count
		}
	}
	n := len(orphaned)
	if n == 0 {
		return nil
	}

	severity := SeverityLow
	switch {
	case n > 10:
		severity = SeverityHigh
	case n > 5:
		severity = SeverityMedium
	}

	// Stalest folders first.
	sort.Slice(orphaned, func(i, j int) bool {
		li, lj := activity[orphaned[i]].last, activity[orphaned[j]].last
		if !li.Equal(lj) {
			return li.Before(lj)
		}
		return orphaned[i] < orphaned[j]
	})
	var items []string
	for _, folder := range capItems(orphaned, 5) {
		fa := activity[folder]
		days := int(now.Sub(fa.last).Hours() / 24)
		items = append(items, fmt.Sprintf("%s: %d files (%d days inactive)",
			filepath.Base(folder), fa.count, days))
	}

	inactiveDays := int(d.InactiveFor.Hours() / 24)
	return []Finding{{
		Category: CategoryOrphanedFolders,
		Severity: severity,
		Title:    fmt.Sprintf("%d Orphaned Folders Detected", n),
		Description: fmt.Sprintf(
			"Found %d folders with %d files that haven't been accessed in %d+ days. "+
				"These folders create mental overhead during navigation and file searches.",
			n, totalFiles, inactiveDays),
		Suggestion: "Archive old project folders to a dedicated archive directory. Delete folders " +
			"that are no longer needed. Date-based folder naming makes old content easy to spot.",
		TimeLossMinutes: float64(n), // one minute per orphaned folder
		AffectedItems:   items,
	}}
}
