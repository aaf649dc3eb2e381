// Package server exposes the placement pipeline over HTTP.
//
// Routes:
//
//	POST /v1/placements           classroom JSON or TOML → placement result
//	POST /v1/placements/{format}  classroom → rendered chart (text, json, dot, svg)
//	GET  /healthz
//	GET  /version
//
// Placement options come from query parameters: accept, candidate,
// aggregate, clear_existing, refresh and labels.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seatplan/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address of `seatplan serve`.
	DefaultAddr = ":8080"

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes = 1 << 20

	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server serves placement requests through a shared pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a server. defaults supplies thresholds, labels and
// ClearExisting for requests that do not override them.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, defaults: defaults, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1/placements", func(r chi.Router) {
		r.Post("/", s.handlePlace)
		r.Post("/{format}", s.handleRender)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
