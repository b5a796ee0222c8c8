package pipeline

import (
	"sync"
	"time"
)

// DefaultRetention is how long a Tracker keeps settled runs.
const DefaultRetention = 5 * time.Minute

// Tracker indexes live runs by ID so they can be looked up and cancelled
// from elsewhere, e.g. an HTTP handler. Settled runs stay visible for the
// retention period and are then evicted.
type Tracker struct {
	mu        sync.Mutex
	runs      map[string]*Handle
	retention time.Duration
	now       func() time.Time
}

// NewTracker creates a tracker. A non-positive retention uses DefaultRetention.
func NewTracker(retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Tracker{
		runs:      make(map[string]*Handle),
		retention: retention,
		now:       time.Now,
	}
}

// Track registers h under its ID.
func (t *Tracker) Track(h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evictLocked()
	t.runs[h.ID()] = h
}

// Get returns the run with the given ID.
func (t *Tracker) Get(id string) (*Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evictLocked()
	h, ok := t.runs[id]
	return h, ok
}

// Cancel signals the run with the given ID. It reports whether the run
// was found.
func (t *Tracker) Cancel(id string) bool {
	h, ok := t.Get(id)
	if ok {
		h.Cancel()
	}
	return ok
}

// Len returns the number of tracked runs, settled ones included.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evictLocked()
	return len(t.runs)
}

func (t *Tracker) evictLocked() {
	cutoff := t.now().Add(-t.retention)
	for id, h := range t.runs {
		if at, ok := h.settledAt(); ok && at.Before(cutoff) {
			delete(t.runs, id)
		}
	}
}

// CancelAll signals every tracked run that has not settled yet and returns
// how many were signalled.
func (t *Tracker) CancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, h := range t.runs {
		if !h.State().IsTerminal() {
			h.Cancel()
			n++
		}
	}
	return n
}
