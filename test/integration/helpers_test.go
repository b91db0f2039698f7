package integration

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/auth"
	"github.com/vidlinks/vidlinks/internal/cors"
	"github.com/vidlinks/vidlinks/internal/extractor"
	"github.com/vidlinks/vidlinks/internal/formats"
	"github.com/vidlinks/vidlinks/internal/links"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/server"
	"github.com/vidlinks/vidlinks/internal/timeout"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// fixture describes the server under test. Zero values give an open server
// with a generous rate limit.
type fixture struct {
	capacity int
	origins  []string
	apiKey   string
}

type liveServer struct {
	url    string
	client *http.Client
}

// get issues a GET with optional headers given as name/value pairs.
func (s liveServer) get(t *testing.T, path string, headers ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func sampleVideo(ctx context.Context, u string) (*extractor.VideoInfo, error) {
	return &extractor.VideoInfo{
		Metadata: extractor.Metadata{Title: "Integration", Author: "Channel", Duration: 30 * time.Second},
		Formats: []formats.RawFormat{
			{Itag: 137, URL: "https://cdn.example/137?a=1&b=2", Container: "mp4", HasVideo: true, Height: 1080, Bitrate: 4000000},
			{Itag: 140, URL: "https://cdn.example/140", Container: "m4a", HasAudio: true, Bitrate: 128000},
		},
	}, nil
}

// start binds IPv4 loopback explicitly and skips when the sandbox refuses
// sockets.
func (f fixture) start(t *testing.T) liveServer {
	t.Helper()
	initLoggers()

	capacity := f.capacity
	if capacity == 0 {
		capacity = 1000
	}
	origins := f.origins
	if origins == nil {
		origins = []string{"*"}
	}

	srv := server.New(server.Options{Host: "127.0.0.1"}, server.Deps{
		Origins:  cors.New(origins),
		Limiter:  ratelimit.New(ratelimit.NewTable(), ratelimit.Options{Capacity: capacity}),
		Auth:     auth.New(f.apiKey),
		Resolver: links.NewService(extractor.FetcherFunc(sampleVideo), links.Options{Policy: timeout.Policy{Timeout: time.Second}}),
	})

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPermissionError(err) {
			t.Skipf("loopback listener unavailable: %v", err)
		}
		require.NoError(t, err)
	}
	ts := &httptest.Server{Listener: listener, Config: &http.Server{Handler: srv.Handler()}}
	ts.Start()
	t.Cleanup(ts.Close)
	return liveServer{url: ts.URL, client: ts.Client()}
}

func initLoggers() {
	observability.InitCLILogger("test", false)
	observability.InitServerLogger(observability.ServerLoggerOptions{Service: "test", Level: "info"})
}

// startMetrics brings up the exporter, skipping where binds are forbidden.
func startMetrics(t *testing.T) {
	t.Helper()
	if err := observability.InitMetrics(observability.MetricsOptions{Service: "test"}); err != nil {
		if isPermissionError(err) {
			t.Skipf("metrics exporter unavailable: %v", err)
		}
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = observability.StopMetrics() })
}

// isPermissionError recognizes sandbox socket denials across platforms.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") || strings.Contains(msg, "not permitted")
}
