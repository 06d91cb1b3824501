// Package server assembles the HTTP API: object CRUD, listing with
// resumable cursors, and health endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/arborlabs/keytree/internal/errors"
	"github.com/arborlabs/keytree/internal/server/handlers"
	"github.com/arborlabs/keytree/internal/server/middleware"
	"github.com/arborlabs/keytree/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	host    string
	port    int
	logger  *zap.Logger
	store   store.Store
	rps     float64
	version handlers.VersionInfo

	router     chi.Router
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStore attaches the storage backend served by the API.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithThrottle limits request throughput. Zero disables throttling.
func WithThrottle(rps float64) Option {
	return func(s *Server) { s.rps = rps }
}

// WithVersion sets the build info served at /version.
func WithVersion(info handlers.VersionInfo) Option {
	return func(s *Server) { s.version = info }
}

// New creates a server listening on host:port.
func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		host:    host,
		port:    port,
		logger:  zap.NewNop(),
		version: handlers.VersionInfo{Version: "dev"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.buildRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Port returns the configured listen port.
func (s *Server) Port() int { return s.port }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return fmt.Sprintf("%s:%d", s.host, s.port) }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.Throttle(s.rps))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteError(w, req, http.StatusNotFound, apperrors.CodeNotFound,
			"route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteError(w, req, http.StatusMethodNotAllowed, apperrors.CodeMethodNotAllowed,
			"method not allowed")
	})

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.VersionHandler(s.version))

	if s.store != nil {
		objects := handlers.NewObjects(s.store)
		r.Route("/v1", func(r chi.Router) {
			r.Get("/list", objects.List)
			r.Get("/objects/*", objects.Get)
			r.Head("/objects/*", objects.Head)
			r.Put("/objects/*", objects.Put)
			r.Delete("/objects/*", objects.Delete)
		})
	}

	return r
}

// Timeouts configures the HTTP server's connection timeouts.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// Start runs the server until the context is cancelled, then shuts
// down gracefully within the given timeout.
func (s *Server) Start(ctx context.Context, timeouts Timeouts, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  timeouts.Read,
		WriteTimeout: timeouts.Write,
		IdleTimeout:  timeouts.Idle,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.Addr()))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
