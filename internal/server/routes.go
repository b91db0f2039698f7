package server

import (
	"net/http"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server/guard"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	hm := s.deps.Health
	s.router.Get("/health", hm.HealthHandler)
	s.router.Get("/health/live", hm.LivenessHandler)
	s.router.Get("/health/ready", hm.ReadinessHandler)
	s.router.Get("/health/startup", hm.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", s.metricsHandler)

	s.registerLinks()
	s.registerAdminEndpoint()
}

// registerLinks mounts the guarded links endpoint. Routes use HandleFunc so
// OPTIONS and wrong methods reach the guards instead of the router's 405.
func (s *Server) registerLinks() {
	s.router.Group(func(r chi.Router) {
		r.Use(guard.CORS(s.deps.Origins))
		r.Use(guard.RequireURL)
		r.Use(guard.RateLimit(s.deps.Limiter, s.deps.RateLimitEnabled))
		r.Use(guard.APIKey(s.deps.Auth))

		h := handlers.LinksHandler(s.deps.Resolver)
		r.HandleFunc(LinksPath, h)
		r.HandleFunc(LegacyLinksPath, h)
	})
}

// RateLimitAdminPath reports and resets limiter state.
const RateLimitAdminPath = "/admin/ratelimit"

// registerAdminEndpoint optionally registers the admin signal and rate limit
// endpoints.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no admin token configured)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", http.HandlerFunc(handler.ServeHTTP))

	rl := handlers.NewRateLimitAdmin(s.deps.Limiter, s.opts.AdminToken)
	s.router.Get(RateLimitAdminPath, rl.Report)
	s.router.Delete(RateLimitAdminPath, rl.Reset)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.Strings("paths", []string{"/admin/signal", RateLimitAdminPath}),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
