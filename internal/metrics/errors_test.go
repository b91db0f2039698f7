package metrics

import (
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/observability"
)

func withCollector(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })
	return collector
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"/api/getDownloadLinks":                EndpointLinks,
		"/.netlify/functions/getDownloadLinks": EndpointLinks,
		"/health":                              EndpointHealth,
		"/health/ready":                        EndpointHealth,
		"/healthz":                             EndpointUnknown,
		"/admin/ratelimit":                     EndpointAdmin,
		"/version":                             EndpointVersion,
		"/metrics":                             EndpointMetrics,
		"/":                                    EndpointRoot,
		"/wp-login.php":                        EndpointUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, EndpointLabel(path), path)
	}
}

func TestRecordErrorEmitsCounters(t *testing.T) {
	collector := withCollector(t)

	RecordError("RATE_LIMIT_EXCEEDED", 429, "")
	RecordErrorByEndpoint("/.netlify/functions/getDownloadLinks", "RATE_LIMIT_EXCEEDED")
	RecordPanic("/api/getDownloadLinks")

	assert.Greater(t, collector.CountMetricsByName(ErrorsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(ErrorsByEndpointName), 0)
	assert.Greater(t, collector.CountMetricsByName(PanicsTotalName), 0)
}

func TestRecordErrorWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	assert.NotPanics(t, func() {
		RecordError("UPSTREAM_ERROR", 502, "high")
		RecordErrorByEndpoint("/x", "UPSTREAM_ERROR")
		RecordPanic("/x")
	})
}
