package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/ratelimit"
)

func newAdminLimiter(t *testing.T) *ratelimit.Limiter {
	t.Helper()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return ratelimit.New(ratelimit.NewTable(), ratelimit.Options{
		Capacity: 2,
		Window:   time.Minute,
		Clock:    func() time.Time { return now },
	})
}

func TestRateLimitAdminRequiresToken(t *testing.T) {
	admin := NewRateLimitAdmin(newAdminLimiter(t), "secret")

	for _, header := range []string{"", "Bearer wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/ratelimit", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		admin.Report(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRateLimitAdminEmptyTokenRejects(t *testing.T) {
	admin := NewRateLimitAdmin(newAdminLimiter(t), "")

	req := httptest.NewRequest(http.MethodGet, "/admin/ratelimit", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	admin.Report(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitAdminReport(t *testing.T) {
	limiter := newAdminLimiter(t)
	limiter.Allow("1.2.3.4")
	limiter.Allow("1.2.3.4")
	limiter.Allow("5.6.7.8")
	admin := NewRateLimitAdmin(limiter, "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/ratelimit?client=1.2.3.4", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	admin.Report(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string          `json:"status"`
		Data   RateLimitReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SUCCESS", body.Status)
	assert.Equal(t, 2, body.Data.Stats.TrackedClients)
	assert.Equal(t, 1, body.Data.Stats.BlockedClients)
	assert.Equal(t, "1m0s", body.Data.Window)
	require.NotNil(t, body.Data.Client)
	assert.Equal(t, 0, body.Data.Client.Remaining)
	assert.True(t, body.Data.Client.Tracked)
}

func TestRateLimitAdminReset(t *testing.T) {
	limiter := newAdminLimiter(t)
	limiter.Allow("1.2.3.4")
	admin := NewRateLimitAdmin(limiter, "secret")

	req := httptest.NewRequest(http.MethodDelete, "/admin/ratelimit", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	admin.Reset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"SUCCESS","data":{"cleared":1}}`, rec.Body.String())
	assert.Zero(t, limiter.Stats().TrackedClients)
}
