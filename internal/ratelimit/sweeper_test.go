package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSweeperEvictsOnSchedule(t *testing.T) {
	clock := newFakeClock()
	limiter := New(NewTable(), Options{Clock: clock.Now})
	limiter.Allow("stale")
	clock.Advance(time.Hour)

	sweeper := NewSweeper(limiter, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, sweeper.Start(ctx))
	defer sweeper.Stop()

	require.Eventually(t, func() bool {
		return limiter.table.Len() == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewSweeper(New(nil, Options{}), time.Minute)
	require.NoError(t, sweeper.Start(context.Background()))
	sweeper.Stop()
	sweeper.Stop()
}

func TestSweeperStopReleasesContextWatcher(t *testing.T) {
	sweeper := NewSweeper(New(nil, Options{}), time.Minute)
	require.NoError(t, sweeper.Start(context.Background()))
	sweeper.Stop()

	select {
	case <-sweeper.watcher:
	case <-time.After(time.Second):
		t.Fatal("context watcher still running after Stop")
	}
}

func TestSweeperStopsWhenContextEnds(t *testing.T) {
	sweeper := NewSweeper(New(nil, Options{}), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sweeper.Start(ctx))
	cancel()

	select {
	case <-sweeper.watcher:
	case <-time.After(time.Second):
		t.Fatal("context watcher did not exit")
	}
	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	require.False(t, sweeper.running)
}
