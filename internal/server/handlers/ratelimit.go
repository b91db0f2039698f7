package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/auth"
	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/server/respond"
)

// RateLimitReport is the admin view of the limiter.
type RateLimitReport struct {
	Stats  ratelimit.Stats   `json:"stats"`
	Window string            `json:"window"`
	Client *ratelimit.Status `json:"client,omitempty"`
}

// RateLimitAdmin exposes limiter state behind the admin bearer token.
type RateLimitAdmin struct {
	limiter *ratelimit.Limiter
	token   string
}

// NewRateLimitAdmin builds the admin handlers. An empty token rejects every
// request.
func NewRateLimitAdmin(limiter *ratelimit.Limiter, token string) *RateLimitAdmin {
	return &RateLimitAdmin{limiter: limiter, token: token}
}

// Report answers GET with table stats and, when ?client= is set, that
// client's standing.
func (a *RateLimitAdmin) Report(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}

	report := RateLimitReport{
		Stats:  a.limiter.Stats(),
		Window: a.limiter.Window().String(),
	}
	if client := strings.TrimSpace(r.URL.Query().Get("client")); client != "" {
		status := a.limiter.Status(client)
		report.Client = &status
	}
	respond.Success(w, report)
}

// Reset answers DELETE by forgetting every tracked client.
func (a *RateLimitAdmin) Reset(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}

	before := a.limiter.Stats().TrackedClients
	a.limiter.Reset()
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Rate limit table reset via admin endpoint",
			zap.Int("cleared", before))
	}
	respond.Success(w, map[string]int{"cleared": before})
}

func (a *RateLimitAdmin) authorized(w http.ResponseWriter, r *http.Request) bool {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if a.token == "" || token == "" || !auth.Equal(token, a.token) {
		respond.Error(w, r, apperrors.UnauthorizedOutcome("Admin token required"))
		return false
	}
	return true
}
