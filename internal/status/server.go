// Package status implements the `weaver serve` HTTP status server: a
// small long-running process that reports the health of the last
// generation run, for dashboards and liveness probes.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/build-flow-labs/weaver/generate"
	"github.com/build-flow-labs/weaver/validate"
)

// Config holds status server configuration.
type Config struct {
	Addr string
}

// RunRecord is the most recently observed generation run, reported by
// /status and rendered by /ui.
type RunRecord struct {
	Manifest    *generate.Manifest
	Health      *validate.HealthReport
	RecordedAt  time.Time
}

// Server is the `weaver serve` HTTP status server.
type Server struct {
	cfg    Config
	logger *slog.Logger
	mux    *http.ServeMux

	runsProcessed atomic.Int64
	lastRun       atomic.Pointer[RunRecord]
}

// NewServer creates a configured status server.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/ui", s.handleUI)
	s.mux.HandleFunc("/ui/", s.handleUI)

	return s
}

// RecordRun stores the outcome of a generation run so subsequent /status
// and /ui requests reflect it.
func (s *Server) RecordRun(manifest *generate.Manifest, health *validate.HealthReport, now time.Time) {
	s.runsProcessed.Add(1)
	s.lastRun.Store(&RunRecord{Manifest: manifest, Health: health, RecordedAt: now})
}

// Start begins listening. Blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server starting", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("status server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"runs_processed": s.runsProcessed.Load(),
	}
	if rec := s.lastRun.Load(); rec != nil {
		resp["last_run_at"] = rec.RecordedAt.Format(time.RFC3339)
		resp["last_target"] = rec.Manifest.Target
		resp["last_run_id"] = rec.Manifest.RunID
		resp["last_file_count"] = len(rec.Manifest.Entries)
		if rec.Health != nil {
			resp["health_score"] = rec.Health.Health.Score
			resp["health_grade"] = rec.Health.Health.Grade
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	rec := s.lastRun.Load()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if rec == nil {
		fmt.Fprint(w, renderPage(nil))
		return
	}
	fmt.Fprint(w, renderPage(rec))
}
