package guard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/auth"
	"github.com/vidlinks/vidlinks/internal/cors"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
)

type chainDeps struct {
	origins  []string
	secret   string
	capacity int
	enabled  bool
}

func newChain(t *testing.T, deps chainDeps, reached *int) http.Handler {
	t.Helper()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.NewTable(), ratelimit.Options{
		Capacity: deps.capacity,
		Clock:    func() time.Time { return clock },
	})
	var enabled atomic.Bool
	enabled.Store(deps.enabled)

	r := chi.NewRouter()
	r.Use(CORS(cors.New(deps.origins)))
	r.Use(RequireURL)
	r.Use(RateLimit(limiter, &enabled))
	r.Use(APIKey(auth.New(deps.secret)))
	r.HandleFunc("/links", func(w http.ResponseWriter, r *http.Request) {
		*reached++
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	code, _ := body["errorCode"].(string)
	return code
}

func TestPreflightShortCircuits(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"https://app.example"}, secret: "k", capacity: 1, enabled: true}, &reached)

	req := httptest.NewRequest(http.MethodOptions, "/links", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, reached)
}

func TestRejectedOriginIsForbidden(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"https://app.example"}, capacity: 6, enabled: true}, &reached)

	req := httptest.NewRequest(http.MethodGet, "/links?url=x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
	assert.Zero(t, reached)
}

func TestMissingURLIsMethodNotAllowed(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"*"}, capacity: 6, enabled: true}, &reached)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/links", nil),
		httptest.NewRequest(http.MethodPost, "/links?url=x", nil),
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "GET", rec.Header().Get("Allow"))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	assert.Zero(t, reached)
}

func TestSeventhRequestIsRateLimited(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"*"}, capacity: 6, enabled: true}, &reached)

	for i := 1; i <= 7; i++ {
		req := httptest.NewRequest(http.MethodGet, "/links?url=x", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if i <= 6 {
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", errorCode(t, rec))
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	}
	assert.Equal(t, 6, reached)
}

func TestDisabledRateLimitIsNotConsulted(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"*"}, capacity: 1, enabled: false}, &reached)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/links?url=x", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, 3, reached)
}

func TestAPIKeyGate(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"*"}, secret: "s3cret", capacity: 100, enabled: true}, &reached)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/links?url=x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/links?url=x&api_key=nope", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/links?url=x&api_key=s3cret", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reached)
}

func TestRateLimitRunsBeforeAuth(t *testing.T) {
	var reached int
	h := newChain(t, chainDeps{origins: []string{"*"}, secret: "s3cret", capacity: 1, enabled: true}, &reached)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/links?url=x", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
