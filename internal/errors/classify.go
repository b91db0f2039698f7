package errors

import (
	"context"
	stderrors "errors"
	"net"
	"strings"

	"github.com/vidlinks/vidlinks/internal/timeout"
)

// StatusCoder is implemented by failures that carry an HTTP-like status.
type StatusCoder interface {
	HTTPStatus() int
}

// networkFailures are transient transport failures treated as timeouts.
var networkFailures = []string{
	"ECONNRESET", "ENOTFOUND", "ECONNREFUSED",
	"connection reset", "no such host", "connection refused",
}

// Classify maps any failure to an Outcome. Rules are checked in order and the
// first match wins; anything unmatched is KindUnknown.
func Classify(err error) *Outcome {
	if err == nil {
		return nil
	}

	var outcome *Outcome
	if stderrors.As(err, &outcome) {
		return outcome
	}

	var te *timeout.Error
	if stderrors.As(err, &te) {
		return TimeoutOutcome(te.Timeout).WithCause(err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return TimeoutOutcome(0).WithCause(err)
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return TimeoutOutcome(0).WithCause(err)
	}

	msg := err.Error()
	status := statusOf(err)

	switch {
	case strings.Contains(msg, "TIMEOUT") || strings.Contains(msg, "timeout"):
		return TimeoutOutcome(0).WithCause(err)
	case strings.Contains(msg, "403") || status == 403:
		return ForbiddenOutcome(msg).WithCause(err)
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "private") || strings.Contains(msg, "deleted"):
		return VideoUnavailableOutcome(msg).WithCause(err)
	case strings.Contains(msg, "age") && strings.Contains(msg, "restricted"):
		return AgeRestrictedOutcome(msg).WithCause(err)
	case strings.Contains(msg, "RATE_LIMIT") || status == 429:
		return RateLimitedOutcome(60, 0).WithDetails("").WithCause(err)
	case strings.Contains(msg, "UNAUTHORIZED") || status == 401:
		return UnauthorizedOutcome("API key invalid or missing").WithCause(err)
	case strings.Contains(msg, "Invalid URL") || (strings.Contains(msg, "invalid") && strings.Contains(msg, "url")):
		return InvalidURLOutcome().WithCause(err)
	case containsAny(msg, networkFailures):
		return TimeoutOutcome(0).WithCause(err)
	default:
		return UnknownOutcome(msg).WithCause(err)
	}
}

func statusOf(err error) int {
	var sc StatusCoder
	if stderrors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
