package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}

// handleTrack adapts one ingestion entry point into a handler. Ingestion
// never fails upward: a vanished path is a tolerated race, so the response
// is always accepted once the request itself is well-formed.
func (s *Server) handleTrack(record func(context.Context, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if req.Path == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path required"})
			return
		}

		record(r.Context(), req.Path)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleTrackSwitch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folder string `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Folder == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "folder required"})
		return
	}

	s.tracker.RecordFolderSwitch(r.Context(), req.Folder)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res := s.analyzer.Analyze(r.Context())

	resp := map[string]any{"result": res}
	if s.reports != nil {
		path, err := s.reports.Write(res)
		if err != nil {
			s.logger.Error("failed to write report", "error", err)
		} else {
			resp["report"] = path
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"stats": s.analyzer.Stats()}
	if s.sched != nil {
		resp["scheduler"] = s.sched.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reporting not configured"})
		return
	}

	latest, err := s.reports.Latest()
	if err != nil {
		s.logger.Error("failed to list reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list reports"})
		return
	}
	if latest == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no reports generated yet"})
		return
	}

	body, err := os.ReadFile(latest)
	if err != nil {
		s.logger.Error("failed to read report", "path", latest, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read report"})
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(body)
}
