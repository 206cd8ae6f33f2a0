package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/poll"
)

// DefaultAddr is the listen address used by `flowtower serve`.
const DefaultAddr = ":8080"

// maxBodyBytes bounds POST /layout payloads.
const maxBodyBytes = 4 << 20

const shutdownTimeout = 5 * time.Second

// StatsSource provides the most recent system statistics.
// *poll.Poller[api.SystemStats] implements it.
type StatsSource interface {
	Last() (poll.Result[api.SystemStats], bool)
}

var _ StatsSource = (*poll.Poller[api.SystemStats])(nil)

// Server serves diagram layouts and renders.
type Server struct {
	runner   *pipeline.Runner
	stats    StatsSource
	logger   *log.Logger
	defaults pipeline.Options
}

// Option configures a Server.
type Option func(*Server)

// WithStats enables GET /stats.
func WithStats(src StatsSource) Option {
	return func(s *Server) { s.stats = src }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDefaults sets the layout and render options applied before query
// parameters. Only layout and render fields are used.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{runner: runner, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with request ids, logging and panic
// recovery installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/layout", s.handleLayoutBody)
	r.Route("/diagrams", func(r chi.Router) {
		r.Get("/{id}/layout", s.handleLayout)
		r.Get("/{file}", s.handleArtifact)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
