package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// MicroClutter flags folders that accumulate many small files.
type MicroClutter struct {
	SmallFileBytes  int64 // files strictly smaller than this are "small"
	FolderThreshold int   // small files needed before a folder qualifies
	Exists          func(string) bool
}

// NewMicroClutter creates the detector; zero arguments use the defaults
// (50KB small-file cutoff, 50 files per folder).
func NewMicroClutter(smallFileBytes int64, folderThreshold int) *MicroClutter {
	if smallFileBytes <= 0 {
		smallFileBytes = 50 * 1024
	}
	if folderThreshold <= 0 {
		folderThreshold = 50
	}
	return &MicroClutter{
		SmallFileBytes:  smallFileBytes,
		FolderThreshold: folderThreshold,
		Exists:          fileExists,
	}
}

func (d *MicroClutter) Name() string { return CategoryMicroClutter }

func (d *MicroClutter) Scan(snap *ledger.Snapshot, now time.Time) []Finding {
	perFolder := make(map[string]int)
	for _, rec := range snap.Files {
		if rec.Deleted || rec.Size >= d.SmallFileBytes {
			continue
		}
		if !d.Exists(rec.Path) {
			continue
		}
		perFolder[rec.ParentFolder]++
	}

	var cluttered []string
	total := 0
	for folder, count := range perFolder {
		if count >= d.FolderThreshold {
			cluttered = append(cluttered, folder)
			total += count
		}
	}
	if len(cluttered) == 0 {
		return nil
	}

	severity := SeverityLow
	switch {
	case total > 200:
		severity = SeverityHigh
	case total >= 100:
		severity = SeverityMedium
	}

	sort.Slice(cluttered, func(i, j int) bool {
		if perFolder[cluttered[i]] != perFolder[cluttered[j]] {
			return perFolder[cluttered[i]] > perFolder[cluttered[j]]
		}
		return cluttered[i] < cluttered[j]
	})
	var items []string
	for _, folder := range capItems(cluttered, 5) {
		items = append(items, fmt.Sprintf("%s: %d small files", folder, perFolder[folder]))
	}

	return []Finding{{
		Category: CategoryMicroClutter,
		Severity: severity,
		Title:    fmt.Sprintf("Micro-Clutter in %d Folders", len(cluttered)),
		Description: fmt.Sprintf(
			"Found %d small files (<%dKB) scattered across %d folders. Small files create "+
				"visual clutter and slow down folder navigation.",
			total, d.SmallFileBytes/1024, len(cluttered)),
		Suggestion: "Archive or consolidate small files into dedicated folders. Use compression " +
			"for collections of related small files. Delete temporary and cache files.",
		TimeLossMinutes: float64(total) * 2 / 60, // 2 seconds per small file to scan past
		AffectedItems:   items,
	}}
}
