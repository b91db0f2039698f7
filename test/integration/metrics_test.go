package integration

import (
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server"
)

func TestMetricsReflectMixedTraffic(t *testing.T) {
	startMetrics(t)
	srv := fixture{}.start(t)

	paths := []string{
		server.LinksPath + "?url=" + videoURL,
		server.LegacyLinksPath + "?url=" + videoURL,
		server.LinksPath,
		"/missing",
		"/health",
	}

	const perPath = 8
	started := time.Now()
	var wg sync.WaitGroup
	for _, p := range paths {
		for i := 0; i < perPath; i++ {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				resp, err := srv.client.Get(srv.url + path)
				if err == nil {
					_ = resp.Body.Close()
				}
			}(p)
		}
	}
	wg.Wait()
	elapsed := time.Since(started)

	resp := srv.get(t, "/metrics")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scrape := string(body)
	for _, series := range []string{
		"test_http_requests_total",
		"test_http_request_duration_ms",
		"test_http_errors_total",
		"test_links_requests_total",
		"test_errors_total",
	} {
		assert.Contains(t, scrape, series)
	}
	assert.Less(t, elapsed, 5*time.Second)
	t.Logf("%d requests in %v", len(paths)*perPath, elapsed)
}

func TestMetricsUnavailableWithoutExporter(t *testing.T) {
	require.NoError(t, observability.StopMetrics())
	srv := fixture{}.start(t)

	assert.Equal(t, http.StatusOK, srv.get(t, "/health").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, srv.get(t, "/metrics").StatusCode)
}
