// Package server assembles the HTTP surface: the guarded links endpoint,
// health probes, version, metrics and the optional admin signal endpoint.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/auth"
	"github.com/vidlinks/vidlinks/internal/cors"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
	servermw "github.com/vidlinks/vidlinks/internal/server/middleware"
)

// Links endpoint paths. The second keeps existing serverless-style clients
// working.
const (
	LinksPath       = "/api/getDownloadLinks"
	LegacyLinksPath = "/.netlify/functions/getDownloadLinks"
)

// Options configures the listener.
type Options struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// MetricsPort is used when the exporter has not reported its own port.
	MetricsPort int
	// AdminToken enables POST /admin/signal when set.
	AdminToken string
}

// Deps are the collaborators behind the links endpoint. All are required
// except Health, which defaults to an empty manager.
type Deps struct {
	Origins          *cors.Validator
	Limiter          *ratelimit.Limiter
	RateLimitEnabled *atomic.Bool
	Auth             *auth.Gate
	Resolver         handlers.Resolver
	Health           *handlers.HealthManager
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	opts   Options
	deps   Deps
}

// New creates a new HTTP server instance
func New(opts Options, deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = handlers.NewHealthManager(handlers.AppVersion)
	}
	if deps.RateLimitEnabled == nil {
		deps.RateLimitEnabled = &atomic.Bool{}
		deps.RateLimitEnabled.Store(true)
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)

	// RequestID → Metrics → Recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeMethodNotAllowed)

	s := &Server{
		router: r,
		opts:   opts,
		deps:   deps,
	}

	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.opts.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.opts.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(s.opts.IdleTimeout, 120*time.Second),
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.opts.Host),
			zap.Int("port", s.opts.Port),
			zap.String("addr", addr),
			zap.Bool("auth_enabled", s.deps.Auth.Enabled()),
			zap.Bool("rate_limit_enabled", s.deps.RateLimitEnabled.Load()),
			zap.Strings("allowed_origins", s.deps.Origins.Origins()))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.opts.Port
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
