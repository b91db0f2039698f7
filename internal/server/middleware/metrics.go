package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
)

// statusRecorder captures the status code and body size a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// endpointFor prefers the chi route pattern and falls back to the bounded
// path mapping for requests chi never matched.
func endpointFor(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		switch pattern := rctx.RoutePattern(); pattern {
		case "":
		case "/.netlify/functions/getDownloadLinks":
			return metrics.EndpointLinks
		default:
			return pattern
		}
	}
	return metrics.EndpointLabel(r.URL.Path)
}

// guardRejection names the guard that short-circuited a links request, or ""
// when the request reached the resolver.
func guardRejection(endpoint string, status int) string {
	if endpoint != metrics.EndpointLinks {
		return ""
	}
	switch status {
	case http.StatusUnauthorized:
		return "auth"
	case http.StatusForbidden:
		return "cors"
	case http.StatusMethodNotAllowed:
		return "method"
	case http.StatusTooManyRequests:
		return "rate_limit"
	default:
		return ""
	}
}

func isProbe(endpoint string) bool {
	return endpoint == metrics.EndpointHealth || endpoint == metrics.EndpointMetrics
}

// RequestMetrics records count, latency and response size per endpoint, tags
// guard rejections on the links routes and logs one line per request.
// Health and scrape traffic logs at debug.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		endpoint := endpointFor(r)
		rejectedBy := guardRejection(endpoint, rec.status)

		if sys := observability.TelemetrySystem; sys != nil {
			labels := map[string]string{
				"method":   r.Method,
				"endpoint": endpoint,
				"status":   strconv.Itoa(rec.status),
			}
			_ = sys.Counter("http_requests_total", 1, labels)
			_ = sys.Histogram("http_request_duration_ms", elapsed, labels)
			_ = sys.Gauge("http_response_size_bytes", float64(rec.written), map[string]string{
				"method":   r.Method,
				"endpoint": endpoint,
			})

			if rec.status >= 400 {
				errorType := "client_error"
				if rec.status >= 500 {
					errorType = "server_error"
				}
				errLabels := map[string]string{
					"method":     r.Method,
					"endpoint":   endpoint,
					"status":     strconv.Itoa(rec.status),
					"error_type": errorType,
				}
				if rejectedBy != "" {
					errLabels["guard"] = rejectedBy
				}
				_ = sys.Counter("http_errors_total", 1, errLabels)
			}
		}

		logger := observability.ServerLogger
		if logger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("endpoint", endpoint),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.Int64("response_size", rec.written),
			zap.String("client", ratelimit.MaskKey(ratelimit.ClientKey(r))),
			zap.String("requestID", GetRequestID(r.Context())),
		}
		if rejectedBy != "" {
			fields = append(fields, zap.String("rejected_by", rejectedBy))
		}
		if isProbe(endpoint) {
			logger.Debug("HTTP request completed", fields...)
			return
		}
		logger.Info("HTTP request completed", fields...)
	})
}
