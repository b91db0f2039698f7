package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
)

// Recovery turns a panic into a 500 with the standard error body. The panic
// value and stack go to the log only.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				panicErr := errors.NewErrorEnvelope("INTERNAL_ERROR", fmt.Sprintf("panic: %v", err)).
					WithCorrelationID(GetRequestID(r.Context()))
				panicErr, _ = panicErr.WithContext(map[string]interface{}{
					"stack_trace": string(debug.Stack()),
				})
				panicErr, _ = panicErr.WithSeverity(errors.SeverityCritical)

				metrics.RecordPanic(r.URL.Path)
				if observability.ServerLogger != nil {
					observability.ServerLogger.Error(panicErr.Message,
						zap.String("request_id", panicErr.CorrelationID),
						zap.String("path", r.URL.Path),
						zap.Any("stack_trace", panicErr.Context["stack_trace"]),
					)
				}

				writeErrorResponse(w, panicErr.CorrelationID, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// panicBody mirrors the shared error body; it lives here because the errors
// package imports this one.
type panicBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

func writeErrorResponse(w http.ResponseWriter, requestID string, statusCode int) {
	body := panicBody{
		Status:    "ERROR",
		Message:   "Internal server error",
		ErrorCode: "INTERNAL_ERROR",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
