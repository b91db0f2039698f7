package metrics

import (
	"strconv"
	"strings"

	"github.com/vidlinks/vidlinks/internal/observability"
)

// Error metrics
const (
	ErrorsTotalName      = "errors_total"
	PanicsTotalName      = "panics_total"
	ErrorsByEndpointName = "errors_by_endpoint"
)

// Endpoint labels. Paths outside the known surface collapse to EndpointUnknown
// so scanners cannot blow up label cardinality.
const (
	EndpointLinks   = "/api/getDownloadLinks"
	EndpointHealth  = "/health/*"
	EndpointAdmin   = "/admin/*"
	EndpointVersion = "/version"
	EndpointMetrics = "/metrics"
	EndpointRoot    = "/"
	EndpointUnknown = "/unknown"
)

// EndpointLabel maps a request path onto a bounded label set. Both link
// routes share one label.
func EndpointLabel(path string) string {
	switch {
	case path == "/api/getDownloadLinks", path == "/.netlify/functions/getDownloadLinks":
		return EndpointLinks
	case path == "/health", strings.HasPrefix(path, "/health/"):
		return EndpointHealth
	case strings.HasPrefix(path, "/admin/"):
		return EndpointAdmin
	case path == EndpointVersion, path == EndpointMetrics, path == EndpointRoot:
		return path
	default:
		return EndpointUnknown
	}
}

// RecordError counts one error body by taxonomy code, status and severity.
func RecordError(errorCode string, httpStatus int, severity string) {
	if observability.TelemetrySystem == nil {
		return
	}
	if severity == "" {
		severity = "low"
	}
	_ = observability.TelemetrySystem.Counter(ErrorsTotalName, 1, map[string]string{
		"error_code":  errorCode,
		"http_status": strconv.Itoa(httpStatus),
		"severity":    severity,
	})
}

// RecordErrorByEndpoint counts an error body against the normalized endpoint
// of path.
func RecordErrorByEndpoint(path string, errorCode string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ErrorsByEndpointName, 1, map[string]string{
		"endpoint":   EndpointLabel(path),
		"error_code": errorCode,
	})
}

// RecordPanic counts a recovered handler panic.
func RecordPanic(path string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(PanicsTotalName, 1, map[string]string{
		"endpoint": EndpointLabel(path),
	})
}
