package ratelimit

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	// DefaultCapacity is the number of requests admitted per window.
	DefaultCapacity = 6
	// DefaultWindow is the fixed window length.
	DefaultWindow = time.Minute
	// DefaultSweepInterval is how often expired records are removed.
	DefaultSweepInterval = 5 * time.Minute
)

// Action describes what a decision did to the client's window.
type Action string

const (
	ActionAllowed Action = "ALLOWED"
	ActionReset   Action = "RESET"
	ActionBlocked Action = "BLOCKED"
)

// Options configures a Limiter. Zero values select the defaults.
type Options struct {
	Capacity int
	Window   time.Duration
	// Grace is how long a record survives after its window ends.
	Grace time.Duration
	Clock func() time.Time
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Action     Action
	Key        string
	Count      int
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Status reports a client's standing without consuming quota.
type Status struct {
	Key       string    `json:"key"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Tracked   bool      `json:"tracked"`
}

// Stats summarizes the table.
type Stats struct {
	TrackedClients int `json:"tracked_clients"`
	BlockedClients int `json:"blocked_clients"`
	Capacity       int `json:"capacity"`
}

// Limiter is a fixed-window counter per client key. A burst straddling a
// window boundary can see up to twice the capacity in under one window.
type Limiter struct {
	table    *Table
	capacity atomic.Int64
	window   time.Duration
	grace    time.Duration
	clock    func() time.Time
}

// New builds a Limiter over table.
func New(table *Table, opts Options) *Limiter {
	if table == nil {
		table = NewTable()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Grace <= 0 {
		opts.Grace = 5 * opts.Window
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	l := &Limiter{
		table:  table,
		window: opts.Window,
		grace:  opts.Grace,
		clock:  opts.Clock,
	}
	l.capacity.Store(int64(opts.Capacity))
	return l
}

// Capacity returns the current per-window limit.
func (l *Limiter) Capacity() int {
	return int(l.capacity.Load())
}

// SetCapacity changes the per-window limit for subsequent decisions.
func (l *Limiter) SetCapacity(n int) {
	if n <= 0 {
		n = DefaultCapacity
	}
	l.capacity.Store(int64(n))
}

// Window returns the window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow records one request for key and decides whether to admit it.
func (l *Limiter) Allow(key string) Decision {
	now := l.clock()
	limit := l.Capacity()
	decision := Decision{Key: key, Limit: limit}

	l.table.update(key, func() *ClientRecord {
		return &ClientRecord{Key: key, WindowResetAt: now.Add(l.window), WindowStartedAt: now}
	}, func(rec *ClientRecord) {
		switch {
		case now.After(rec.WindowResetAt):
			rec.Count = 1
			rec.WindowStartedAt = now
			rec.WindowResetAt = now.Add(l.window)
			decision.Allowed = true
			decision.Action = ActionReset
		case rec.Count >= limit:
			decision.Allowed = false
			decision.Action = ActionBlocked
			decision.RetryAfter = retryAfterSeconds(rec.WindowResetAt.Sub(now))
		default:
			rec.Count++
			decision.Allowed = true
			decision.Action = ActionAllowed
		}
		decision.Count = rec.Count
		decision.ResetAt = rec.WindowResetAt
	})

	decision.Remaining = max(limit-decision.Count, 0)
	return decision
}

// Status reports key's standing without consuming quota.
func (l *Limiter) Status(key string) Status {
	now := l.clock()
	limit := l.Capacity()
	status := Status{Key: key, Limit: limit, Remaining: limit, ResetAt: now.Add(l.window)}

	rec, ok := l.table.Get(key)
	if !ok {
		return status
	}
	status.Tracked = true
	if now.After(rec.WindowResetAt) {
		return status
	}
	status.Remaining = max(limit-rec.Count, 0)
	status.ResetAt = rec.WindowResetAt
	return status
}

// Sweep removes records whose window ended more than the grace period ago.
func (l *Limiter) Sweep() int {
	now := l.clock()
	return l.table.DeleteIf(func(rec ClientRecord) bool {
		return now.After(rec.WindowResetAt.Add(l.grace))
	})
}

// Stats summarizes the table. A client is blocked while its current window
// is exhausted.
func (l *Limiter) Stats() Stats {
	now := l.clock()
	limit := l.Capacity()
	stats := Stats{Capacity: limit}
	for _, rec := range l.table.Snapshot() {
		stats.TrackedClients++
		if !now.After(rec.WindowResetAt) && rec.Count >= limit {
			stats.BlockedClients++
		}
	}
	return stats
}

// Reset forgets every client.
func (l *Limiter) Reset() {
	l.table.Clear()
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
