package detector

import (
	"context"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	store, err := ledger.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return ledger.New(store, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
}

// stubDetector emits a fixed set of findings.
type stubDetector struct {
	name     string
	findings []Finding
}

func (d stubDetector) Name() string { return d.name }
func (d stubDetector) Scan(*ledger.Snapshot, time.Time) []Finding {
	return d.findings
}

// panicDetector simulates a detector-internal failure.
type panicDetector struct{}

func (panicDetector) Name() string { return "panics" }
func (panicDetector) Scan(*ledger.Snapshot, time.Time) []Finding {
	panic("detector blew up")
}

func TestAnalyzeSeverityOrdering(t *testing.T) {
	l := testLedger(t)
	a := NewAnalyzer(l, []Detector{
		stubDetector{name: "a", findings: []Finding{
			{Category: "a", Severity: SeverityLow, TimeLossMinutes: 9},
		}},
		stubDetector{name: "b", findings: []Finding{
			{Category: "b", Severity: SeverityHigh, TimeLossMinutes: 1},
		}},
		stubDetector{name: "c", findings: []Finding{
			{Category: "c", Severity: SeverityMedium, TimeLossMinutes: 5},
			{Category: "c2", Severity: SeverityMedium, TimeLossMinutes: 7},
		}},
	}, slog.New(slog.NewTextHandler(testWriter{t}, nil)))

	res := a.Analyze(context.Background())

	got := make([]string, len(res.Findings))
	for i, f := range res.Findings {
		got[i] = f.Category
	}
	want := []string{"b", "c2", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("finding order = %v, want %v", got, want)
	}
	if res.Counts != (Counts{High: 1, Medium: 2, Low: 1}) {
		t.Errorf("counts = %+v", res.Counts)
	}
	if res.TotalTimeLossMinutes != 22 {
		t.Errorf("total time loss = %.1f, want 22.0", res.TotalTimeLossMinutes)
	}
}

func TestAnalyzeStableForEqualRank(t *testing.T) {
	l := testLedger(t)
	a := NewAnalyzer(l, []Detector{
		stubDetector{name: "first", findings: []Finding{
			{Category: "first", Severity: SeverityLow, TimeLossMinutes: 2},
		}},
		stubDetector{name: "second", findings: []Finding{
			{Category: "second", Severity: SeverityLow, TimeLossMinutes: 2},
		}},
	}, slog.New(slog.NewTextHandler(testWriter{t}, nil)))

	res := a.Analyze(context.Background())
	if res.Findings[0].Category != "first" || res.Findings[1].Category != "second" {
		t.Errorf("equal-rank findings reordered: %s, %s",
			res.Findings[0].Category, res.Findings[1].Category)
	}
}

func TestDetectorIsolation(t *testing.T) {
	l := testLedger(t)
	a := NewAnalyzer(l, []Detector{
		stubDetector{name: "ok1", findings: []Finding{{Category: "ok1", Severity: SeverityLow}}},
		panicDetector{},
		stubDetector{name: "ok2", findings: []Finding{{Category: "ok2", Severity: SeverityLow}}},
	}, slog.New(slog.NewTextHandler(testWriter{t}, nil)))

	res := a.Analyze(context.Background())
	if len(res.Findings) != 2 {
		t.Fatalf("findings = %d, want 2 (panicking detector skipped)", len(res.Findings))
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC)

	// Cold files ten days old, nothing on disk needed: use a stub existence
	// check via a configured detector.
	for i := 0; i < 25; i++ {
		l.Put(ctx, ledger.FileRecord{
			Path:         "/x/" + string(rune('a'+i)),
			CreatedAt:    now.Add(-10 * 24 * time.Hour),
			ParentFolder: "/x",
		})
	}

	cold := NewColdFiles(0)
	cold.Exists = func(string) bool { return true }
	a := NewAnalyzer(l, []Detector{cold}, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	a.now = func() time.Time { return now }

	first := a.Analyze(ctx)
	second := a.Analyze(ctx)

	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Error("back-to-back analyses disagree with no intervening ingestion")
	}
	if first.TrackedFiles != second.TrackedFiles {
		t.Errorf("tracked files %d vs %d", first.TrackedFiles, second.TrackedFiles)
	}
}

func TestAnalyzeRecordsAnalysisTimeAndPersists(t *testing.T) {
	store, err := ledger.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	l := ledger.New(store, logger)
	ctx := context.Background()

	l.Put(ctx, ledger.FileRecord{Path: "/a", CreatedAt: time.Now()})

	a := NewAnalyzer(l, nil, logger)
	res := a.Analyze(ctx)

	if res.RunID == "" {
		t.Error("run ID not assigned")
	}
	if l.LastAnalysis().IsZero() {
		t.Error("analysis time not recorded")
	}

	// Analyze forces a save: the single record is on disk even though the
	// mutation batch threshold was never reached.
	files, _, last, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("persisted files = %d, want 1", len(files))
	}
	if last.IsZero() {
		t.Error("last analysis time not persisted")
	}
}

func TestAnalyzeEmptyLedger(t *testing.T) {
	l := testLedger(t)
	a := NewAnalyzer(l, nil, slog.New(slog.NewTextHandler(testWriter{t}, nil)))

	res := a.Analyze(context.Background())
	if len(res.Findings) != 0 {
		t.Errorf("findings = %d, want 0 on empty ledger", len(res.Findings))
	}
	if res.TrackedFiles != 0 {
		t.Errorf("tracked files = %d, want 0", res.TrackedFiles)
	}
}
