// Package ratelimit implements the per-client fixed-window request limiter
// that guards the links endpoint.
package ratelimit

import (
	"sync"
	"time"
)

// ClientRecord tracks one client key's usage in the current window.
type ClientRecord struct {
	Key             string
	Count           int
	WindowResetAt   time.Time
	// WindowStartedAt is the first request of the current window.
	WindowStartedAt time.Time
}

// Table owns every ClientRecord. All reads and writes go through its mutex,
// so a check-and-increment is atomic with respect to concurrent requests and
// to the background sweep.
type Table struct {
	mu      sync.Mutex
	records map[string]*ClientRecord
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{records: make(map[string]*ClientRecord)}
}

// update runs fn against the record for key while holding the lock. A missing
// record is created by create first.
func (t *Table) update(key string, create func() *ClientRecord, fn func(rec *ClientRecord)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key]
	if !ok {
		rec = create()
		t.records[key] = rec
	}
	fn(rec)
}

// Get returns a copy of the record for key.
func (t *Table) Get(key string) (ClientRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key]
	if !ok {
		return ClientRecord{}, false
	}
	return *rec, true
}

// Snapshot returns copies of every record.
func (t *Table) Snapshot() []ClientRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ClientRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	return out
}

// DeleteIf removes every record for which expired returns true.
func (t *Table) DeleteIf(expired func(ClientRecord) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, rec := range t.records {
		if expired(*rec) {
			delete(t.records, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked clients.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Clear drops every record.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]*ClientRecord)
}
