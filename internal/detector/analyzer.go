package detector

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fileops/attnmon/internal/ledger"
)

// Counts breaks findings down by severity.
type Counts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Result is the outcome of one full analysis pass.
type Result struct {
	RunID                string    `json:"run_id"`
	GeneratedAt          time.Time `json:"generated_at"`
	Findings             []Finding `json:"findings"`
	Counts               Counts    `json:"counts"`
	TotalTimeLossMinutes float64   `json:"total_time_loss_minutes"`
	TrackedFiles         int       `json:"tracked_files"`
}

// Analyzer runs the detector battery over the ledger and aggregates findings.
type Analyzer struct {
	ledger    *ledger.Ledger
	detectors []Detector
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil detector list uses Defaults().
func NewAnalyzer(l *ledger.Ledger, detectors []Detector, logger *slog.Logger) *Analyzer {
	if len(detectors) == 0 {
		detectors = Defaults()
	}
	return &Analyzer{
		ledger:    l,
		detectors: detectors,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze runs every detector over a snapshot of the ledger, ranks the
// findings, and records the analysis time (forcing a ledger save). It always
// returns a result: a failing detector is skipped, never fatal.
func (a *Analyzer) Analyze(ctx context.Context) *Result {
	now := a.now()
	snap := a.ledger.Snapshot()

	var findings []Finding
	for _, d := range a.detectors {
		findings = append(findings, a.runDetector(d, snap, now)...)
	}

	// Severity first, biggest time loss next. The sort is stable so findings
	// of equal rank keep detector-execution order.
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		return findings[i].TimeLossMinutes > findings[j].TimeLossMinutes
	})

	res := &Result{
		RunID:       uuid.New().String(),
		GeneratedAt: now,
		Findings:    findings,
	}
	for _, f := range findings {
		res.TotalTimeLossMinutes += f.TimeLossMinutes
		switch f.Severity {
		case SeverityHigh:
			res.Counts.High++
		case SeverityMedium:
			res.Counts.Medium++
		default:
			res.Counts.Low++
		}
	}
	for _, rec := range snap.Files {
		if !rec.Deleted {
			res.TrackedFiles++
		}
	}

	a.ledger.CompleteAnalysis(ctx, now)

	a.logger.Info("analysis complete",
		"run_id", res.RunID,
		"findings", len(findings),
		"time_loss_minutes", res.TotalTimeLossMinutes,
	)
	return res
}

// runDetector isolates one detector pass: a panic is logged and skipped so
// the remaining detectors still run.
func (a *Analyzer) runDetector(d Detector, snap *ledger.Snapshot, now time.Time) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("detector failed, skipping", "detector", d.Name(), "panic", r)
			findings = nil
		}
	}()
	return d.Scan(snap, now)
}

// Stats returns cheap read-only summary statistics.
func (a *Analyzer) Stats() ledger.Stats {
	return a.ledger.Stats(a.now())
}

// LastAnalysis exposes the ledger's last completed analysis time.
func (a *Analyzer) LastAnalysis() time.Time {
	return a.ledger.LastAnalysis()
}
