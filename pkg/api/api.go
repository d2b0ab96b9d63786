// Package api serves the rnaviz pipeline over HTTP.
//
// Routes:
//
//	GET  /api/v1/health   build information
//	POST /api/v1/layout   node coordinates as JSON
//	POST /api/v1/render   one artifact with the matching content type
//
// Request bodies are JSON:
//
//	{
//	  "sequence": "GGGAAAUCC",
//	  "pairs": [0, 8, 1, 7],          // or "0,8,1,7"
//	  "format": "svg",                // svg, png, pdf, json, dot
//	  "options": {"mode": "circular", "legend": true}
//	}
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with the error code; validation failures map to 422, undecodable bodies to
// 400 and render failures to 500.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rnaviz/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultMaxSequenceLen = 5000
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
)

// Config bounds request handling.
type Config struct {
	// MaxSequenceLen rejects longer sequences with 422. Zero disables the check.
	MaxSequenceLen int
	// RequestTimeout cancels the pipeline of slow requests.
	RequestTimeout time.Duration
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64
	// Defaults are the pipeline options that request fields override,
	// typically built from the configuration file.
	Defaults pipeline.Options
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
}

// New creates a server. A nil logger uses the default logger.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		logger: logger.WithPrefix("api"),
		cfg:    cfg.withDefaults(),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
