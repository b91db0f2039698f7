// Package guard holds the request gates that run in front of the links
// handler: CORS, method check, rate limit and API key. Each gate writes its
// own rejection and stops the chain.
package guard

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/auth"
	"github.com/vidlinks/vidlinks/internal/cors"
	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/server/middleware"
	"github.com/vidlinks/vidlinks/internal/server/respond"
)

// URLParam is the query parameter carrying the video link.
const URLParam = "url"

// CORS applies the origin policy. Preflight requests are answered here with
// the header set only; other requests from a rejected origin get 403.
func CORS(v *cors.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := v.Apply(w.Header(), origin)

			if r.Method == http.MethodOptions {
				respond.Preflight(w)
				return
			}
			if !allowed {
				metrics.RecordCORSRejection()
				respond.Error(w, r, apperrors.OriginRejectedOutcome(origin))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireURL admits only GET requests that carry a non-empty url parameter.
func RequireURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Query().Get(URLParam) == "" {
			respond.MethodNotAllowed(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit consults the limiter while enabled is true. Every consulted
// response carries X-RateLimit headers.
func RateLimit(l *ratelimit.Limiter, enabled *atomic.Bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enabled != nil && !enabled.Load() {
				next.ServeHTTP(w, r)
				return
			}

			key := ratelimit.ClientKey(r)
			d := l.Allow(key)
			metrics.RecordRateLimitDecision(string(d.Action))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Warn("Rate limit exceeded",
						zap.String("client", ratelimit.MaskKey(key)),
						zap.Int("count", d.Count),
						zap.Int("limit", d.Limit),
						zap.Int("retry_after", d.RetryAfter),
						zap.String("request_id", middleware.GetRequestID(r.Context())))
				}
				respond.Error(w, r, apperrors.RateLimitedOutcome(d.RetryAfter, d.Limit))
				return
			}

			if observability.ServerLogger != nil {
				observability.ServerLogger.Debug("Rate limit check",
					zap.String("client", ratelimit.MaskKey(key)),
					zap.String("action", string(d.Action)),
					zap.Int("count", d.Count),
					zap.Int("limit", d.Limit))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// APIKey enforces the shared secret when one is configured.
func APIKey(g *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(r); err != nil {
				reason := "invalid"
				if stderrors.Is(err, auth.ErrKeyRequired) {
					reason = "missing"
				}
				metrics.RecordAuthFailure(reason)
				respond.Error(w, r, apperrors.UnauthorizedOutcome(err.Error()).WithCause(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
