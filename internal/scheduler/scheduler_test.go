package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fileops/attnmon/internal/detector"
	"github.com/fileops/attnmon/internal/ledger"
	"github.com/fileops/attnmon/internal/report"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func testAnalyzer(t *testing.T) *detector.Analyzer {
	t.Helper()
	store, err := ledger.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	l := ledger.New(store, logger)
	return detector.NewAnalyzer(l, nil, logger)
}

func TestStartStopLifecycle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	s := New(testAnalyzer(t), nil, Options{
		Interval:   time.Hour,
		CheckEvery: 10 * time.Millisecond,
	}, logger)

	if s.Status().Running {
		t.Fatal("scheduler should start idle")
	}

	s.Start()
	if !s.Status().Running {
		t.Fatal("scheduler should be running after Start")
	}

	// Starting again is a harmless no-op.
	s.Start()

	// The immediate first check runs an analysis.
	deadline := time.Now().Add(2 * time.Second)
	for s.Status().LastAnalysis.IsZero() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler never ran the initial analysis")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Stop()
	if s.Status().Running {
		t.Fatal("scheduler should be idle after Stop")
	}

	// Stopping again is a harmless no-op.
	s.Stop()
}

func TestForceAnalysisResetsTimer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	s := New(testAnalyzer(t), nil, Options{Interval: time.Hour}, logger)

	res := s.ForceAnalysis(context.Background())
	if res == nil {
		t.Fatal("ForceAnalysis returned nil result")
	}

	st := s.Status()
	if st.LastAnalysis.IsZero() {
		t.Fatal("LastAnalysis not recorded")
	}
	wantNext := st.LastAnalysis.Add(time.Hour)
	if !st.NextAnalysis.Equal(wantNext) {
		t.Errorf("NextAnalysis = %v, want %v", st.NextAnalysis, wantNext)
	}
	if st.IntervalHours != 1 {
		t.Errorf("IntervalHours = %v, want 1", st.IntervalHours)
	}
}

func TestIntervalNotElapsedSkipsRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	a := testAnalyzer(t)
	s := New(a, nil, Options{
		Interval:   time.Hour,
		CheckEvery: 5 * time.Millisecond,
	}, logger)

	// Seed a fresh analysis so the loop has nothing to do.
	first := s.ForceAnalysis(context.Background())

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if got := a.LastAnalysis(); !got.Equal(first.GeneratedAt) {
		t.Errorf("analysis ran again before the interval elapsed: %v vs %v", got, first.GeneratedAt)
	}
}

func TestAutoReportWritesReport(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	w, err := report.NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	s := New(testAnalyzer(t), w, Options{AutoReport: true}, logger)

	s.ForceAnalysis(context.Background())

	latest, err := w.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == "" {
		t.Error("auto-report did not write a report")
	}
}
