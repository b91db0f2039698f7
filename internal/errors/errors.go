// Package errors turns failures into the JSON error contract. Operational
// failures (health probes, routing) travel as gofulmen error envelopes;
// link resolution failures are classified into an Outcome first.
package errors

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server/middleware"
)

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope("NOT_FOUND", message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope("METHOD_NOT_ALLOWED", message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope("INTERNAL_ERROR", message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", message)
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	if envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}

	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}

	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromCode resolves the HTTP status code for an envelope or outcome code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case "INVALID_INPUT", "VALIDATION_FAILED":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "METHOD_NOT_ALLOWED":
		return http.StatusMethodNotAllowed
	case "EXTERNAL_SERVICE_ERROR":
		return http.StatusBadGateway
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable
	case "INTERNAL_ERROR":
		return http.StatusInternalServerError
	}
	switch kind := Kind(code); kind {
	case KindTimeout, KindRateLimited, KindForbidden, KindVideoUnavailable,
		KindAgeRestricted, KindUnauthorized, KindInvalidURL, KindUnknown:
		return StatusForKind(kind)
	}
	return http.StatusInternalServerError
}

// ResponseDetails constructs API-safe details map by merging envelope details and context.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil {
		return nil
	}

	details := make(map[string]interface{})
	for key, value := range envelope.Details {
		details[key] = value
	}
	for key, value := range envelope.Context {
		if _, exists := details[key]; !exists {
			details[key] = value
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// Body is the JSON error contract shared by every endpoint.
type Body struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	ErrorCode   string   `json:"errorCode,omitempty"`
	Details     any      `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	RetryAfter  *int     `json:"retryAfter,omitempty"`
	Timestamp   string   `json:"timestamp"`
	RequestID   string   `json:"requestId,omitempty"`
}

// StatusError is the body status value for failures.
const StatusError = "ERROR"

// RespondWithError writes err to w. Envelopes keep their own code; anything
// else is classified first.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		RespondWithEnvelope(w, r, envelope)
		return
	}
	outcome := Classify(err)
	if outcome == nil {
		outcome = UnknownOutcome("")
	}
	RespondWithOutcome(w, r, outcome)
}

// RespondWithOutcome writes a classified failure.
func RespondWithOutcome(w http.ResponseWriter, r *http.Request, outcome *Outcome) {
	if w == nil || outcome == nil {
		return
	}

	envelope := EnsureCorrelationID(envelopeFromOutcome(outcome), requestContext(r))
	logHTTPError(envelope, outcome.Status)
	emitErrorMetrics(r, string(outcome.Kind), outcome.Status, string(outcome.Severity()))

	body := Body{
		Status:      StatusError,
		Message:     outcome.Message,
		ErrorCode:   string(outcome.Kind),
		Suggestions: Suggestions(outcome.Kind),
		RetryAfter:  outcome.RetryAfter,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		RequestID:   envelope.CorrelationID,
	}
	if outcome.Details != "" {
		body.Details = outcome.Details
	}
	if outcome.RetryAfter != nil {
		w.Header().Set("Retry-After", strconv.Itoa(*outcome.RetryAfter))
	}
	writeBody(w, outcome.Status, body)
}

// RespondWithEnvelope finalizes the provided envelope, logging and emitting metrics.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil || envelope == nil {
		return
	}

	envelope = EnsureCorrelationID(envelope, requestContext(r))
	statusCode := HTTPStatusFromCode(envelope.Code)

	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope.Code, statusCode, string(envelope.Severity))

	body := Body{
		Status:    StatusError,
		Message:   envelope.Message,
		ErrorCode: envelope.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: envelope.CorrelationID,
	}
	if details := ResponseDetails(envelope); details != nil {
		body.Details = details
	}
	writeBody(w, statusCode, body)
}

func writeBody(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return nil
	}
	return r.Context()
}

// envelopeFromOutcome carries an outcome into the gofulmen envelope used for
// structured logging.
func envelopeFromOutcome(outcome *Outcome) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(string(outcome.Kind), outcome.Message)

	logContext := map[string]interface{}{
		"retryable": outcome.Retryable(),
	}
	if cause := outcome.Cause(); cause != nil {
		logContext["cause"] = cause.Error()
	}
	if updated, err := envelope.WithContext(logContext); err == nil {
		envelope = updated
	}

	switch outcome.Severity() {
	case SeverityHigh:
		if updated, err := envelope.WithSeverity(errors.SeverityHigh); err == nil {
			envelope = updated
		}
	case SeverityMedium:
		if updated, err := envelope.WithSeverity(errors.SeverityMedium); err == nil {
			envelope = updated
		}
	}
	return envelope
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}

	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}

	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, code string, statusCode int, severity string) {
	metrics.RecordError(code, statusCode, severity)
	if r != nil {
		metrics.RecordErrorByEndpoint(r.URL.Path, code)
	}
}
