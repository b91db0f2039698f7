// Package timeout races operations against a deadline.
//
// The operation receives a context that is cancelled when the deadline
// fires, but the executor never waits for it: once the timer wins, any
// later result is discarded.
package timeout

import (
	stderrors "errors"
	"fmt"
	"time"
)

const (
	// DefaultTimeout bounds one attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultRetryDelay separates retry attempts.
	DefaultRetryDelay = time.Second
	// DefaultRetries is the number of extra attempts after a timeout.
	DefaultRetries = 1
)

// Code identifies timeout failures.
const Code = "TIMEOUT"

// ErrCancelled is reported by a Handle after Cancel.
var ErrCancelled = stderrors.New("operation cancelled")

// Error reports that every attempt exceeded its deadline.
type Error struct {
	Timeout  time.Duration
	Attempts int
}

func (e *Error) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("operation timeout: all %d attempts timed out after %dms each", e.Attempts, e.Timeout.Milliseconds())
	}
	return fmt.Sprintf("operation timeout: timed out after %dms", e.Timeout.Milliseconds())
}

// Code returns the taxonomy code for timeouts.
func (e *Error) Code() string { return Code }

// IsTimeout reports whether err is, or wraps, a timeout Error.
func IsTimeout(err error) bool {
	var te *Error
	return stderrors.As(err, &te)
}
