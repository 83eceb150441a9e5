// Package server exposes an editor session over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jorge-barreto/pipecraft/internal/ctxlog"
	"github.com/jorge-barreto/pipecraft/internal/editor"
	"github.com/jorge-barreto/pipecraft/internal/simulate"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	session *editor.Session
	logger  *slog.Logger
	// newSimulator returns the simulator for one POST /simulate request.
	// seed is nil when the request did not ask for one.
	newSimulator func(seed *uint64) *simulate.Simulator
}

type Option func(*Server)

// WithSimulator overrides how simulators are built for POST /simulate.
func WithSimulator(fn func(seed *uint64) *simulate.Simulator) Option {
	return func(s *Server) { s.newSimulator = fn }
}

func New(session *editor.Session, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		session:      session,
		logger:       logger,
		newSimulator: instantSimulator,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// instantSimulator runs without pacing; HTTP clients get the finished run.
func instantSimulator(seed *uint64) *simulate.Simulator {
	sim := &simulate.Simulator{}
	if seed != nil {
		sim.Dice = simulate.Seeded(*seed)
	}
	return sim
}

// Handler returns the routed handler with request ID, logging and panic
// recovery applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Route("/pipeline", func(r chi.Router) {
		r.Post("/", s.handleCreatePipeline)
		r.Put("/", s.handleLoadPipeline)
		r.Get("/", s.handleGetPipeline)
		r.Delete("/", s.handleResetPipeline)

		r.Post("/stages", s.handleAddStage)
		r.Post("/stages/reorder", s.handleReorderStages)
		r.Patch("/stages/{id}", s.handleUpdateStage)
		r.Delete("/stages/{id}", s.handleRemoveStage)

		r.Get("/files", s.handleListFiles)
		r.Get("/files/{name}", s.handleGetFile)
		r.Get("/check", s.handleCheck)
	})

	r.Get("/templates", s.handleListTemplates)
	r.Post("/templates/{id}/load", s.handleLoadTemplate)
	r.Get("/dockerfile/{language}", s.handleDockerfile)
	r.Post("/simulate", s.handleSimulate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})
	return r
}

// requestLog attaches a request-scoped logger to the context and logs every
// request once it completes.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(ctxlog.WithLogger(r.Context(), logger))

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if status >= 500 {
			logger.Error("http request", attrs...)
			return
		}
		logger.Info("http request", attrs...)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		return errors.New("addr is required")
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("http server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
