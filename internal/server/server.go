// Package server exposes the render pipeline, the template store, the form
// registry and the workflow validator over HTTP.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/forms"
)

// Engine is the part of *formengine.Engine the server uses.
type Engine interface {
	Render(ctx context.Context, req formengine.RenderRequest) (*formengine.RenderResult, error)
	Templates() ([]formengine.TemplateInfo, error)
	TemplateInfo(name string) (*formengine.TemplateInfo, error)
	ConverterAvailable(ctx context.Context) bool
}

// Options configures a Server.
type Options struct {
	// OutputDir is served under /files. Empty disables file serving.
	OutputDir string
	// Registry resolves form ids. Nil uses forms.Default().
	Registry *forms.Registry
	Logger   *slog.Logger
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Version  string
	// RequestTimeout bounds each API request. Zero means 2 minutes.
	RequestTimeout time.Duration
}

// Server holds the HTTP handlers.
type Server struct {
	engine   Engine
	registry *forms.Registry
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a server for engine.
func New(engine Engine, opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = forms.Default()
	}
	if opts.Logger == nil {
		opts.Logger = formengine.NewNopLogger()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	return &Server{
		engine:   engine,
		registry: opts.Registry,
		opts:     opts,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Get("/health", s.handleHealth)

		r.Route("/forms", func(r chi.Router) {
			r.Post("/render", s.handleRender)
			r.Get("/templates", s.handleListTemplates)
			r.Get("/templates/{name}", s.handleTemplateInfo)
			r.Get("/registry", s.handleRegistry)
		})

		r.Route("/workflow", func(r chi.Router) {
			r.Get("/states/{state}/transitions", s.handleTransitions)
			r.Post("/validate", s.handleValidate)
		})
	})

	if s.opts.OutputDir != "" {
		files := http.StripPrefix("/files/", http.FileServer(http.Dir(s.opts.OutputDir)))
		r.Get("/files/*", files.ServeHTTP)
	}
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run serves handler on addr until ctx is done, then shuts down, giving
// in-flight requests up to grace to finish.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "grace", grace, "err", err)
			if cerr := srv.Close(); cerr != nil {
				return fmt.Errorf("close server: %w", cerr)
			}
		}
		logger.Info("server stopped")
		return nil
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
