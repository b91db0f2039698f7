package extractor

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled limits the rate of upstream calls across all clients.
type Throttled struct {
	next    Fetcher
	limiter *rate.Limiter
}

// NewThrottled allows perSecond calls with the given burst. A non-positive
// rate disables throttling.
func NewThrottled(next Fetcher, perSecond float64, burst int) *Throttled {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// FetchVideoInfo waits for a token then delegates.
func (t *Throttled) FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("upstream throttle: %w", err)
	}
	return t.next.FetchVideoInfo(ctx, videoURL)
}
