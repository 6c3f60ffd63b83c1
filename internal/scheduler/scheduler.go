// Package scheduler drives periodic attention-leak analysis on its own
// timer, independent of the host's loop.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fileops/attnmon/internal/detector"
	"github.com/fileops/attnmon/internal/report"
)

// Status reports the scheduler's current state.
type Status struct {
	Running       bool      `json:"running"`
	IntervalHours float64   `json:"interval_hours"`
	AutoReport    bool      `json:"auto_report"`
	LastAnalysis  time.Time `json:"last_analysis"`
	NextAnalysis  time.Time `json:"next_analysis"`
}

// Options configures a Scheduler.
type Options struct {
	Interval   time.Duration // time between analyses; default 24h
	CheckEvery time.Duration // wake interval of the timer loop; default 5m
	Backoff    time.Duration // pause after a failed run; default 1m
	AutoReport bool          // write a markdown report after each run
}

func (o *Options) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = 24 * time.Hour
	}
	if o.CheckEvery <= 0 {
		o.CheckEvery = 5 * time.Minute
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Minute
	}
}

// Scheduler periodically runs the analyzer and, optionally, the report
// writer. It has two states, idle and running, toggled by Start and Stop.
type Scheduler struct {
	analyzer *detector.Analyzer
	reports  *report.Writer
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Scheduler. reports may be nil when auto-reporting is off.
func New(analyzer *detector.Analyzer, reports *report.Writer, opts Options, logger *slog.Logger) *Scheduler {
	opts.applyDefaults()
	return &Scheduler{
		analyzer: analyzer,
		reports:  reports,
		opts:     opts,
		logger:   logger,
	}
}

// Start transitions idle to running. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("scheduler already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
	s.logger.Info("scheduler started", "interval", s.opts.Interval)
}

// Stop transitions running to idle and joins the loop with a bounded wait.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		s.logger.Warn("timeout waiting for scheduler loop to exit")
	}
	s.logger.Info("scheduler stopped")
}

// ForceAnalysis runs the pipeline immediately regardless of elapsed time.
// The analysis timestamp it records resets the periodic timer.
func (s *Scheduler) ForceAnalysis(ctx context.Context) *detector.Result {
	s.logger.Info("forcing immediate analysis")
	return s.runOnce(ctx)
}

// Status returns the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	last := s.analyzer.LastAnalysis()
	st := Status{
		Running:       running,
		IntervalHours: s.opts.Interval.Hours(),
		AutoReport:    s.opts.AutoReport,
		LastAnalysis:  last,
	}
	if !last.IsZero() {
		st.NextAnalysis = last.Add(s.opts.Interval)
	}
	return st
}

// loop wakes every CheckEvery to see whether the analysis interval has
// elapsed. A failed run is logged and followed by a short backoff; the loop
// itself never exits on error.
func (s *Scheduler) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.opts.CheckEvery)
	defer ticker.Stop()

	// First check happens immediately, not a full tick later.
	if s.due() {
		s.runGuarded(stopCh)
	}

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if s.due() {
				s.runGuarded(stopCh)
			}
		}
	}
}

func (s *Scheduler) due() bool {
	last := s.analyzer.LastAnalysis()
	if last.IsZero() {
		return true
	}
	return time.Since(last) >= s.opts.Interval
}

func (s *Scheduler) runGuarded(stopCh chan struct{}) {
	if err := s.runScheduled(); err != nil {
		s.logger.Error("scheduled analysis failed", "error", err)
		select {
		case <-stopCh:
		case <-time.After(s.opts.Backoff):
		}
	}
}

// runScheduled isolates one scheduled run, converting a panic anywhere in
// the pipeline into an error so the loop survives.
func (s *Scheduler) runScheduled() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &runPanicError{value: r}
		}
	}()
	s.runOnce(context.Background())
	return nil
}

// runOnce executes analysis and, when enabled, report generation.
func (s *Scheduler) runOnce(ctx context.Context) *detector.Result {
	res := s.analyzer.Analyze(ctx)

	if s.opts.AutoReport && s.reports != nil {
		path, err := s.reports.Write(res)
		if err != nil {
			s.logger.Error("failed to write report", "error", err)
		} else {
			s.logger.Info("report written", "path", path)
		}
	}
	return res
}

type runPanicError struct{ value any }

func (e *runPanicError) Error() string {
	return fmt.Sprintf("analysis run panicked: %v", e.value)
}
