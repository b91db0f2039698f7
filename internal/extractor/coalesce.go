package extractor

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vidlinks/vidlinks/internal/metrics"
)

// Coalescing collapses concurrent fetches of the same URL into one upstream
// call. The shared call runs detached from any single caller's context and
// is bounded by MaxWait; each caller still stops waiting when its own
// context ends. A caller that gives up also drops the key from the group,
// so a retry starts a fresh upstream call instead of rejoining a hung one.
type Coalescing struct {
	next    Fetcher
	maxWait time.Duration
	group   singleflight.Group
}

// NewCoalescing wraps next.
func NewCoalescing(next Fetcher, maxWait time.Duration) *Coalescing {
	if maxWait <= 0 {
		maxWait = time.Minute
	}
	return &Coalescing{next: next, maxWait: maxWait}
}

// FetchVideoInfo returns the shared result for videoURL.
func (c *Coalescing) FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error) {
	ch := c.group.DoChan(videoURL, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.maxWait)
		defer cancel()
		return c.next.FetchVideoInfo(shared, videoURL)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.RecordCoalesced()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*VideoInfo), nil
	case <-ctx.Done():
		c.group.Forget(videoURL)
		return nil, ctx.Err()
	}
}
