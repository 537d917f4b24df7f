// Package health provides a simple HTTP health check endpoint.
//
// Docker and Kubernetes use this endpoint to monitor the daemon's liveness.
// When the daemon is running and ready to resolve utterances, /healthz
// returns 200 OK. /statsz additionally exposes pipeline counters.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// StatsFunc returns a point-in-time snapshot of pipeline counters. The
// returned value is JSON-encoded as-is.
type StatsFunc func() any

// Server is a lightweight HTTP server that exposes /healthz, /readyz, and
// /statsz.
type Server struct {
	port   int
	stats  StatsFunc // nil disables /statsz
	ready  atomic.Bool
	server *http.Server
}

// New creates a new health check server. stats may be nil.
func New(port int, stats StatsFunc) *Server {
	return &Server{port: port, stats: stats}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleReadiness)
	mux.HandleFunc("GET /readyz", s.handleReadiness)

	mux.HandleFunc("GET /statsz", func(w http.ResponseWriter, r *http.Request) {
		if s.stats == nil {
			http.Error(w, "stats not configured", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.stats())
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
