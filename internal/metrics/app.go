package metrics

import (
	"strconv"
	"time"

	"github.com/vidlinks/vidlinks/internal/observability"
)

// Link resolution metrics
const (
	LinkRequestsTotal      = "links_requests_total"
	ExtractionDuration     = "links_extraction_duration_ms"
	ExtractionTimeouts     = "links_extraction_timeouts_total"
	SelectedFormats        = "links_selected_formats"
	UpstreamCoalescedTotal = "links_upstream_coalesced_total"
)

// Guard metrics
const (
	RateLimitDecisionsTotal = "ratelimit_decisions_total"
	RateLimitTrackedClients = "ratelimit_tracked_clients"
	AuthFailuresTotal       = "auth_failures_total"
	CORSRejectionsTotal     = "cors_rejections_total"
)

// Health and lifecycle metrics
const (
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
)

// RecordLinkRequest counts one pass through the links endpoint by outcome.
func RecordLinkRequest(outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(LinkRequestsTotal, 1, map[string]string{
		"outcome": outcome,
	})
}

// RecordExtraction records how long one upstream extraction took.
func RecordExtraction(duration time.Duration, success bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Histogram(ExtractionDuration, duration, map[string]string{
		"success": strconv.FormatBool(success),
	})
}

// RecordExtractionTimeout counts an extraction that lost the race with its deadline.
func RecordExtractionTimeout(attempts int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ExtractionTimeouts, 1, map[string]string{
		"attempts": strconv.Itoa(attempts),
	})
}

// SetSelectedFormats reports the size of the last selection.
func SetSelectedFormats(videos, audios int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(SelectedFormats, float64(videos), map[string]string{"kind": "video"})
	_ = observability.TelemetrySystem.Gauge(SelectedFormats, float64(audios), map[string]string{"kind": "audio"})
}

// RecordCoalesced counts a caller that shared an in-flight extraction.
func RecordCoalesced() {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(UpstreamCoalescedTotal, 1, nil)
}

// RecordRateLimitDecision counts limiter outcomes (ALLOWED, RESET, BLOCKED).
func RecordRateLimitDecision(action string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(RateLimitDecisionsTotal, 1, map[string]string{
		"action": action,
	})
}

// SetRateLimitTrackedClients reports the limiter table size.
func SetRateLimitTrackedClients(count int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(RateLimitTrackedClients, float64(count), nil)
}

// RecordAuthFailure counts rejected API keys by reason.
func RecordAuthFailure(reason string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(AuthFailuresTotal, 1, map[string]string{
		"reason": reason,
	})
}

// RecordCORSRejection counts requests from origins outside the allow-list.
func RecordCORSRejection() {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(CORSRejectionsTotal, 1, nil)
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
