package timeout

import (
	"context"
	"sync"
	"time"
)

// Handle is a cancellable in-flight operation.
type Handle[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	value     T
	err       error
	timedOut  bool
	cancelled bool
	settled   bool
}

// Start launches op under deadline d and returns immediately.
func Start[T any](ctx context.Context, d time.Duration, op Operation[T]) *Handle[T] {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle[T]{cancel: cancel, done: make(chan struct{})}

	go func() {
		v, err := Run(runCtx, d, op)
		h.settle(v, err)
	}()
	return h
}

func (h *Handle[T]) settle(v T, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.settled {
		return
	}
	h.settled = true
	h.value, h.err = v, err
	h.timedOut = IsTimeout(err)
	close(h.done)
}

// Cancel suppresses delivery of the eventual outcome. The underlying
// operation's context is cancelled but it is not waited for.
func (h *Handle[T]) Cancel() {
	h.mu.Lock()
	if h.settled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	h.settled = true
	h.err = ErrCancelled
	close(h.done)
	h.mu.Unlock()
	h.cancel()
}

// TimedOut reports whether the deadline fired before the operation settled.
func (h *Handle[T]) TimedOut() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timedOut
}

// Cancelled reports whether Cancel won.
func (h *Handle[T]) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// Done is closed once the handle has an outcome.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Wait blocks for the outcome. A cancelled handle reports ErrCancelled.
func (h *Handle[T]) Wait() (T, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.err
}
