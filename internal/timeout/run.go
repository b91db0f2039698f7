package timeout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Operation is the unit of work raced against a deadline.
type Operation[T any] func(ctx context.Context) (T, error)

type result[T any] struct {
	value T
	err   error
}

// Run executes op and returns its result if it settles within d. Otherwise it
// returns *Error and discards whatever op produces later. A parent context
// that ends first returns the context error.
func Run[T any](ctx context.Context, d time.Duration, op Operation[T]) (T, error) {
	if d <= 0 {
		d = DefaultTimeout
	}

	opCtx, cancel := context.WithCancel(ctx)
	done := make(chan result[T], 1)
	go func() {
		v, err := op(opCtx)
		done <- result[T]{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case res := <-done:
		cancel()
		return res.value, res.err
	case <-timer.C:
		cancel()
		return zero, &Error{Timeout: d, Attempts: 1}
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}

// Policy configures RunWithRetry.
type Policy struct {
	Timeout time.Duration
	// Retries is the number of extra attempts made after a timeout.
	Retries int
	Delay   time.Duration
}

// DefaultPolicy returns the stock retry policy.
func DefaultPolicy() Policy {
	return Policy{Timeout: DefaultTimeout, Retries: DefaultRetries, Delay: DefaultRetryDelay}
}

// RunWithRetry runs op under p.Timeout, retrying only on timeouts. Other
// failures are returned immediately.
func RunWithRetry[T any](ctx context.Context, p Policy, op Operation[T]) (T, error) {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Retries < 0 {
		p.Retries = 0
	}
	attempts := p.Retries + 1

	var zero T
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := Run(ctx, p.Timeout, op)
		if err == nil {
			return v, nil
		}
		if !IsTimeout(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}
		if p.Delay > 0 {
			wait := time.NewTimer(p.Delay)
			select {
			case <-wait.C:
			case <-ctx.Done():
				wait.Stop()
				return zero, ctx.Err()
			}
		}
	}
	return zero, &Error{Timeout: p.Timeout, Attempts: attempts}
}

// RunAll runs every op concurrently, each under d, and returns their values
// in order. The first failure cancels the rest and is returned.
func RunAll[T any](ctx context.Context, d time.Duration, ops ...Operation[T]) ([]T, error) {
	values := make([]T, len(ops))
	g, gctx := errgroup.WithContext(ctx)
	for i, op := range ops {
		g.Go(func() error {
			v, err := Run(gctx, d, op)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
