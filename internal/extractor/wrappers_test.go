package extractor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalescingSharesInFlightCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	next := FetcherFunc(func(ctx context.Context, videoURL string) (*VideoInfo, error) {
		calls.Add(1)
		<-release
		return &VideoInfo{Metadata: Metadata{Title: videoURL}}, nil
	})
	c := NewCoalescing(next, time.Second)

	var wg sync.WaitGroup
	results := make([]*VideoInfo, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := c.FetchVideoInfo(context.Background(), "https://youtu.be/x")
			assert.NoError(t, err)
			results[i] = info
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, info := range results {
		require.NotNil(t, info)
		assert.Equal(t, "https://youtu.be/x", info.Metadata.Title)
	}
}

func TestCoalescingCallerContext(t *testing.T) {
	next := FetcherFunc(func(ctx context.Context, videoURL string) (*VideoInfo, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := NewCoalescing(next, 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.FetchVideoInfo(ctx, "https://youtu.be/y")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThrottledDelegates(t *testing.T) {
	var calls atomic.Int32
	next := FetcherFunc(func(ctx context.Context, videoURL string) (*VideoInfo, error) {
		calls.Add(1)
		return &VideoInfo{}, nil
	})
	th := NewThrottled(next, 0, 0)

	for i := 0; i < 3; i++ {
		_, err := th.FetchVideoInfo(context.Background(), "u")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestThrottledRespectsContext(t *testing.T) {
	next := FetcherFunc(func(ctx context.Context, videoURL string) (*VideoInfo, error) {
		return &VideoInfo{}, nil
	})
	th := NewThrottled(next, 0.001, 1)

	_, err := th.FetchVideoInfo(context.Background(), "u")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = th.FetchVideoInfo(ctx, "u")
	assert.Error(t, err)
}

func TestCoalescingAbandonedCallIsNotRejoined(t *testing.T) {
	var calls atomic.Int32
	next := FetcherFunc(func(ctx context.Context, videoURL string) (*VideoInfo, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &VideoInfo{Metadata: Metadata{Title: "fresh"}}, nil
	})
	c := NewCoalescing(next, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchVideoInfo(ctx, "https://youtu.be/z")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	info, err := c.FetchVideoInfo(context.Background(), "https://youtu.be/z")
	require.NoError(t, err)
	assert.Equal(t, "fresh", info.Metadata.Title)
	assert.Equal(t, int32(2), calls.Load())
}
