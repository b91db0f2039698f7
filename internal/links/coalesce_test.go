package links

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/extractor"
	"github.com/vidlinks/vidlinks/internal/timeout"
)

// The production chain puts coalescing outermost; a timed out attempt must
// not leave its retry waiting on the same hung upstream call.
func TestResolveRetriesThroughCoalescing(t *testing.T) {
	var calls atomic.Int32
	upstream := extractor.FetcherFunc(func(ctx context.Context, videoURL string) (*extractor.VideoInfo, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return sampleInfo(), nil
	})
	svc := NewService(extractor.NewCoalescing(upstream, time.Second), Options{
		Policy: timeout.Policy{Timeout: 100 * time.Millisecond, Retries: 2, Delay: time.Millisecond},
	})

	res, err := svc.Resolve(context.Background(), watchURL)
	require.NoError(t, err)
	assert.Equal(t, "Sample", res.Title)
	assert.Equal(t, int32(2), calls.Load())
}
