package detector

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// DuplicateDownloads flags groups of files sharing a content digest, all
// created within the trailing window. Files without a digest (above the size
// cap, or unreadable at creation) never participate.
type DuplicateDownloads struct {
	Window time.Duration
}

// NewDuplicateDownloads creates the detector; window <= 0 uses the 24h default.
func NewDuplicateDownloads(window time.Duration) *DuplicateDownloads {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &DuplicateDownloads{Window: window}
}

func (d *DuplicateDownloads) Name() string { return CategoryDuplicateDownloads }

func (d *DuplicateDownloads) Scan(snap *ledger.Snapshot, now time.Time) []Finding {
	groups := make(map[string][]ledger.FileRecord)
	for _, rec := range snap.Files {
		if rec.Deleted || rec.Digest == "" {
			continue
		}
		if now.Sub(rec.CreatedAt) > d.Window {
			continue
		}
		groups[rec.Digest] = append(groups[rec.Digest], rec)
	}

	var digests []string
	extras := 0
	for digest, recs := range groups {
		if len(recs) < 2 {
			continue
		}
		digests = append(digests, digest)
		extras += len(recs) - 1
	}
	if extras == 0 {
		return nil
	}

	severity := SeverityLow
	switch {
	case extras > 10:
		severity = SeverityHigh
	case extras > 5:
		severity = SeverityMedium
	}

	// Largest groups first; digest breaks ties so the listing is stable.
	sort.Slice(digests, func(i, j int) bool {
		gi, gj := groups[digests[i]], groups[digests[j]]
		if len(gi) != len(gj) {
			return len(gi) > len(gj)
		}
		return digests[i] < digests[j]
	})

	var items []string
	for _, digest := range digests[:min(len(digests), 5)] {
		recs := groups[digest]
		sort.Slice(recs, func(i, j int) bool {
			if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
				return recs[i].CreatedAt.Before(recs[j].CreatedAt)
			}
			return recs[i].Path < recs[j].Path
		})
		for _, rec := range recs {
			items = append(items, fmt.Sprintf("%s (%s)", filepath.Base(rec.Path), rec.ParentFolder))
		}
	}

	hours := int(d.Window.Hours())
	return []Finding{{
		Category: CategoryDuplicateDownloads,
		Severity: severity,
		Title:    fmt.Sprintf("%d Duplicate Files Downloaded", extras),
		Description: fmt.Sprintf(
			"Detected %d duplicate files downloaded within %d hours. Re-downloading files "+
				"indicates poor file organization or inability to locate existing files.",
			extras, hours),
		Suggestion: "Implement better file naming conventions and use a dedicated downloads " +
			"organizer. Consider bookmarking frequently accessed files.",
		TimeLossMinutes: float64(extras) * 30 / 60, // 30 seconds to handle each duplicate
		AffectedItems:   items,
	}}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
