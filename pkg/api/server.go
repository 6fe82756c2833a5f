package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getmockd/commercemock/pkg/logging"
	"github.com/getmockd/commercemock/pkg/repository"
)

// maxRequestBodySize limits drafts and update requests.
const maxRequestBodySize = 10 << 20

// Config configures the HTTP listener.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes a repository registry over HTTP.
type Server struct {
	registry   *repository.Registry
	metrics    *repository.MetricsObserver
	httpServer *http.Server
	handler    http.Handler
	started    time.Time
	log        *slog.Logger
}

// NewServer creates a server for registry. metrics may be nil, in which case
// /-/metrics reports empty operation counters.
func NewServer(registry *repository.Registry, metrics *repository.MetricsObserver, cfg Config) *Server {
	s := &Server{
		registry: registry,
		metrics:  metrics,
		started:  time.Now(),
		log:      logging.Nop(),
	}
	if s.metrics == nil {
		s.metrics = repository.NewMetricsObserver()
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = s.withMiddleware(mux)

	readTimeout, writeTimeout := cfg.ReadTimeout, cfg.WriteTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	return s
}

// SetLogger sets the logger.
func (s *Server) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe serves until Shutdown is called. It returns nil after a
// graceful shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("starting commercemock", "addr", s.httpServer.Addr, "kinds", len(s.registry.Kinds()))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("stopping commercemock")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Admin
	mux.HandleFunc("GET /-/health", s.handleHealth)
	mux.HandleFunc("GET /-/metrics", s.handleMetrics)
	mux.HandleFunc("POST /-/reset", s.handleReset)

	// Resources
	mux.HandleFunc("POST /{projectKey}/orders/import", s.handleImport)
	mux.HandleFunc("POST /{projectKey}/{path}", s.handleCreate)
	mux.HandleFunc("GET /{projectKey}/{path}", s.handleQuery)
	mux.HandleFunc("GET /{projectKey}/{path}/{id}", s.handleGet)
	mux.HandleFunc("POST /{projectKey}/{path}/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /{projectKey}/{path}/{id}", s.handleDelete)

	mux.HandleFunc("/", s.handleNotFound)
}

func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
