package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
)

// Sweeper periodically evicts expired client records.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	// watcher is closed once the context watcher from Start has exited.
	watcher  chan struct{}
}

// NewSweeper schedules limiter.Sweep every interval.
func NewSweeper(limiter *Limiter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		limiter:  limiter,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start begins sweeping until ctx is done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("failed to schedule rate limit sweep: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.stop = make(chan struct{})
	s.watcher = make(chan struct{})

	if observability.ServerLogger != nil {
		observability.ServerLogger.Debug("Rate limit sweeper started", zap.Duration("interval", s.interval))
	}

	go func(stop, done chan struct{}) {
		defer close(done)
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}(s.stop, s.watcher)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stop)
	<-s.cron.Stop().Done()
	s.running = false
}

func (s *Sweeper) run() {
	removed := s.limiter.Sweep()
	metrics.SetRateLimitTrackedClients(s.limiter.table.Len())
	if removed > 0 && observability.ServerLogger != nil {
		observability.ServerLogger.Debug("Rate limit records evicted",
			zap.Int("removed", removed),
			zap.Int("remaining", s.limiter.table.Len()))
	}
}
