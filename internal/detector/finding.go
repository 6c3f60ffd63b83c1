package detector

import (
	"fmt"
	"os"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// Finding categories.
const (
	CategoryColdFiles          = "cold-files"
	CategoryDuplicateDownloads = "duplicate-downloads"
	CategoryMicroClutter       = "micro-clutter"
	CategoryContextSwitching   = "context-switching"
	CategoryOrphanedFolders    = "orphaned-folders"
)

// Severity ranks a finding. Higher sorts first.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "high":
		*s = SeverityHigh
	case "medium":
		*s = SeverityMedium
	case "low":
		*s = SeverityLow
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Finding is one detected attention leak. AffectedItems is capped for report
// readability and never feeds back into counts, severity, or time loss.
type Finding struct {
	Category        string   `json:"category"`
	Severity        Severity `json:"severity"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Suggestion      string   `json:"suggestion"`
	TimeLossMinutes float64  `json:"time_loss_minutes"`
	AffectedItems   []string `json:"affected_items"`
}

// Detector scans a ledger snapshot and emits zero or more findings. Detectors
// share no mutable state, so execution order does not matter.
type Detector interface {
	Name() string
	Scan(snap *ledger.Snapshot, now time.Time) []Finding
}

// Defaults returns all five detectors with their default thresholds.
func Defaults() []Detector {
	return []Detector{
		NewColdFiles(0),
		NewDuplicateDownloads(0),
		NewMicroClutter(0, 0),
		NewContextSwitching(0),
		NewOrphanedFolders(0, 0),
	}
}

// capItems bounds a display list without touching the underlying counts.
func capItems(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

// fileExists is the default on-disk existence check.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
