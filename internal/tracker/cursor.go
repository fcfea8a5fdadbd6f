// Package tracker keeps bounded per-document histories of cursor positions
// and recently edited line ranges. It is pure bookkeeping; trigger policy
// lives in the trigger package.
package tracker

import (
	"time"

	"github.com/charmbracelet/ghost/internal/document"
)

// DefaultCursorHistory is the per-document cursor record cap.
const DefaultCursorHistory = 100

// CursorRecord is one observed cursor position.
type CursorRecord struct {
	URI      string
	Position document.Position
	SeenAt   time.Time
}

// Option configures a tracker at construction time.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock injects a clock, used by tests to control elapsed time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// CursorTracker records where the cursor has been, per document, with FIFO
// eviction at a fixed cap.
type CursorTracker struct {
	history map[string][]CursorRecord
	cap     int
	now     func() time.Time
}

// NewCursorTracker creates a tracker retaining at most cap records per
// document. Non-positive caps fall back to DefaultCursorHistory.
func NewCursorTracker(cap int, opts ...Option) *CursorTracker {
	if cap <= 0 {
		cap = DefaultCursorHistory
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &CursorTracker{
		history: make(map[string][]CursorRecord),
		cap:     cap,
		now:     o.now,
	}
}

// RecordCursor appends a record for pos with the current time, evicting the
// oldest record when the cap is exceeded.
func (t *CursorTracker) RecordCursor(uri string, pos document.Position) CursorRecord {
	rec := CursorRecord{URI: uri, Position: pos, SeenAt: t.now()}
	records := append(t.history[uri], rec)
	if len(records) > t.cap {
		records = records[len(records)-t.cap:]
	}
	t.history[uri] = records
	return rec
}

// TimeSincePosition returns the elapsed time since pos was last recorded at
// exactly that (line, character). The second return is false if the position
// was never seen.
func (t *CursorTracker) TimeSincePosition(uri string, pos document.Position) (time.Duration, bool) {
	records := t.history[uri]
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Position == pos {
			return t.now().Sub(records[i].SeenAt), true
		}
	}
	return 0, false
}

// HasPositionBeenStableFor reports whether the cursor has rested at pos for
// at least d. An unseen position counts as stable: with no record there is
// nothing to contradict it.
func (t *CursorTracker) HasPositionBeenStableFor(uri string, pos document.Position, d time.Duration) bool {
	elapsed, seen := t.TimeSincePosition(uri, pos)
	if !seen {
		return true
	}
	return elapsed >= d
}

// History returns the retained records for uri, oldest first. The returned
// slice is a copy.
func (t *CursorTracker) History(uri string) []CursorRecord {
	records := t.history[uri]
	out := make([]CursorRecord, len(records))
	copy(out, records)
	return out
}

// ForgetDocument drops all history for uri.
func (t *CursorTracker) ForgetDocument(uri string) {
	delete(t.history, uri)
}

// Sweep forgets every tracked document for which isOpen reports false.
// Bounds memory even when a close notification was missed.
func (t *CursorTracker) Sweep(isOpen func(uri string) bool) {
	for uri := range t.history {
		if !isOpen(uri) {
			delete(t.history, uri)
		}
	}
}
