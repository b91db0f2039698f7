package errors

import (
	"fmt"
	"net/http"
	"time"
)

// Kind is the stable error code returned to callers.
type Kind string

const (
	KindTimeout          Kind = "TIMEOUT"
	KindRateLimited      Kind = "RATE_LIMIT_EXCEEDED"
	KindForbidden        Kind = "FORBIDDEN"
	KindVideoUnavailable Kind = "VIDEO_UNAVAILABLE"
	KindAgeRestricted    Kind = "AGE_RESTRICTED"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindInvalidURL       Kind = "INVALID_URL"
	KindUnknown          Kind = "UNKNOWN"
)

// Severity drives the log level for an outcome.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// StatusForKind maps a kind to its HTTP status.
func StatusForKind(kind Kind) int {
	switch kind {
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// SeverityForKind reports how loudly a kind is logged.
func SeverityForKind(kind Kind) Severity {
	switch kind {
	case KindTimeout, KindForbidden, KindUnauthorized:
		return SeverityMedium
	case KindVideoUnavailable, KindAgeRestricted, KindRateLimited, KindInvalidURL:
		return SeverityLow
	default:
		return SeverityHigh
	}
}

// Retryable reports whether a caller may reasonably retry the same request.
func Retryable(kind Kind) bool {
	return kind == KindTimeout || kind == KindRateLimited
}

// Suggestions returns user-facing hints for a kind.
func Suggestions(kind Kind) []string {
	switch kind {
	case KindTimeout:
		return []string{"Check your network connection", "Retry in a moment", "Large videos can take longer to resolve"}
	case KindForbidden:
		return []string{"The video may be region locked", "Check whether the video requires sign-in", "Try from a different network"}
	case KindVideoUnavailable:
		return []string{"Check that the video link is correct", "The video may have been deleted or made private", "Try a public video link"}
	case KindAgeRestricted:
		return []string{"The video is age restricted", "Try a different video"}
	case KindRateLimited:
		return []string{"Requests are too frequent", "Wait a minute before retrying"}
	case KindUnauthorized:
		return []string{"Send a valid key in the X-API-Key header or the api_key query parameter"}
	case KindInvalidURL:
		return []string{"Provide a valid YouTube video link", "Supported form: https://www.youtube.com/watch?v=VIDEO_ID"}
	default:
		return []string{"Check the input and retry", "Contact support if the problem persists"}
	}
}

// Outcome is a classified failure ready to be written to a caller. Methods
// that change it return a copy.
type Outcome struct {
	Kind       Kind
	Message    string
	Status     int
	Details    string
	RetryAfter *int
	cause      error
}

// NewOutcome builds an outcome of kind with message.
func NewOutcome(kind Kind, message string) *Outcome {
	return &Outcome{Kind: kind, Message: message, Status: StatusForKind(kind)}
}

func (o *Outcome) Error() string {
	if o.cause != nil && o.cause.Error() != o.Message {
		return fmt.Sprintf("%s: %s: %v", o.Kind, o.Message, o.cause)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}

// Unwrap exposes the underlying failure.
func (o *Outcome) Unwrap() error { return o.cause }

// Cause returns the underlying failure, if any.
func (o *Outcome) Cause() error { return o.cause }

// WithDetails returns a copy carrying details.
func (o *Outcome) WithDetails(details string) *Outcome {
	c := *o
	c.Details = details
	return &c
}

// WithRetryAfter returns a copy carrying a retry hint in seconds.
func (o *Outcome) WithRetryAfter(seconds int) *Outcome {
	c := *o
	c.RetryAfter = &seconds
	return &c
}

// WithCause returns a copy wrapping err.
func (o *Outcome) WithCause(err error) *Outcome {
	c := *o
	c.cause = err
	return &c
}

// Severity reports the outcome's log severity.
func (o *Outcome) Severity() Severity { return SeverityForKind(o.Kind) }

// Retryable reports whether the request may be retried.
func (o *Outcome) Retryable() bool { return Retryable(o.Kind) }

// TimeoutOutcome reports an extraction that exceeded its deadline.
func TimeoutOutcome(limit time.Duration) *Outcome {
	details := "Resolution exceeded its time limit; the network may be slow or the video large"
	if limit > 0 {
		details = fmt.Sprintf("Resolution exceeded the %s limit; the network may be slow or the video large", limit)
	}
	return NewOutcome(KindTimeout, "Video resolution timed out, please retry").WithDetails(details)
}

// RateLimitedOutcome reports an exhausted window.
func RateLimitedOutcome(retryAfter, perMinute int) *Outcome {
	return NewOutcome(KindRateLimited, "Too many requests, please retry later").
		WithDetails(fmt.Sprintf("At most %d requests per minute are allowed", perMinute)).
		WithRetryAfter(retryAfter)
}

// UnauthorizedOutcome reports a missing or wrong API key.
func UnauthorizedOutcome(message string) *Outcome {
	return NewOutcome(KindUnauthorized, message).
		WithDetails("Supply a valid key in the X-API-Key header or the api_key query parameter")
}

// ForbiddenOutcome reports a refused request.
func ForbiddenOutcome(message string) *Outcome {
	return NewOutcome(KindForbidden, message).
		WithDetails("The video may be region locked or require sign-in")
}

// OriginRejectedOutcome reports an origin outside the allow-list.
func OriginRejectedOutcome(origin string) *Outcome {
	return NewOutcome(KindForbidden, fmt.Sprintf("Origin %s is not allowed", origin)).
		WithDetails("The request origin is not in the allowed origins list")
}

// VideoUnavailableOutcome reports a private, deleted or missing video.
func VideoUnavailableOutcome(message string) *Outcome {
	return NewOutcome(KindVideoUnavailable, message).
		WithDetails("The video may be private, deleted or unavailable")
}

// AgeRestrictedOutcome reports an age-gated video.
func AgeRestrictedOutcome(message string) *Outcome {
	return NewOutcome(KindAgeRestricted, message).WithDetails("The video is age restricted")
}

// InvalidURLOutcome reports a URL that is not a supported video link.
func InvalidURLOutcome() *Outcome {
	return NewOutcome(KindInvalidURL, "Invalid YouTube video URL").
		WithDetails("Provide a valid YouTube video URL")
}

// UnknownOutcome wraps anything unclassified.
func UnknownOutcome(message string) *Outcome {
	if message == "" {
		message = "Failed to fetch video information"
	}
	return NewOutcome(KindUnknown, message)
}
