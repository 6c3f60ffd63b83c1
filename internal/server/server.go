// Package server exposes the engine to host collaborators over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fileops/attnmon/internal/detector"
	"github.com/fileops/attnmon/internal/report"
	"github.com/fileops/attnmon/internal/scheduler"
	"github.com/fileops/attnmon/internal/tracker"
)

// Server is the attnmon HTTP API.
type Server struct {
	tracker  *tracker.Tracker
	analyzer *detector.Analyzer
	sched    *scheduler.Scheduler // optional
	reports  *report.Writer       // optional
	logger   *slog.Logger
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a Server. sched and reports may be nil; the corresponding
// endpoints degrade gracefully.
func New(tr *tracker.Tracker, analyzer *detector.Analyzer, sched *scheduler.Scheduler,
	reports *report.Writer, version string, logger *slog.Logger) *Server {
	s := &Server{
		tracker:  tr,
		analyzer: analyzer,
		sched:    sched,
		reports:  reports,
		logger:   logger,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/track/created", s.handleTrack(s.tracker.RecordCreated))
		r.Post("/track/accessed", s.handleTrack(s.tracker.RecordAccessed))
		r.Post("/track/deleted", s.handleTrack(s.tracker.RecordDeleted))
		r.Post("/track/switch", s.handleTrackSwitch)

		r.Post("/analyze", s.handleAnalyze)
		r.Get("/status", s.handleStatus)
		r.Get("/report/latest", s.handleLatestReport)
	})

	s.router = r
}
