// SPDX-License-Identifier: MIT

// Package api exposes the session operations over HTTP: single-session
// create, the batch lifecycle operations, schedule updates and the usual
// health and metrics endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/driftlab/vdeskd/internal/config"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/orchestrator"
	"github.com/driftlab/vdeskd/internal/store"
)

// Server is the HTTP ingress for session operations.
type Server struct {
	cfg    config.APIConfig
	orc    *orchestrator.Orchestrator
	stores store.Stores
	logger zerolog.Logger
}

// NewServer wires the HTTP server.
func NewServer(cfg config.APIConfig, orc *orchestrator.Orchestrator, stores store.Stores) *Server {
	return &Server{
		cfg:    cfg,
		orc:    orc,
		stores: stores,
		logger: vlog.WithComponent("api"),
	}
}

// Router builds the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/{sessionID}", s.handleGet)
		r.Put("/{sessionID}/schedule", s.handleUpdateSchedule)

		r.Post("/stop", s.handleStop)
		r.Post("/resume", s.handleResume)
		r.Post("/reboot", s.handleReboot)
		r.Post("/terminate", s.handleTerminate)
	})
	return r
}

// ListenAndServe runs the server until ctx is canceled, then drains with a
// short grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.ListenAddr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
