package tracker

import (
	"time"

	"github.com/charmbracelet/ghost/internal/document"
)

// Edit tracker defaults.
const (
	DefaultEditHistory = 100
	DefaultEditMaxAge  = 5 * time.Minute
)

// EditRecord is one observed text change attributed to a line range.
type EditRecord struct {
	URI    string
	Range  document.Range
	Text   string
	SeenAt time.Time
}

// EditTracker records recent edits per document. Records are evicted FIFO at
// a fixed cap and additionally purged by absolute age on every insertion.
type EditTracker struct {
	history map[string][]EditRecord
	cap     int
	maxAge  time.Duration
	now     func() time.Time
}

// NewEditTracker creates a tracker retaining at most cap records per
// document, each for at most maxAge. Non-positive values fall back to
// defaults.
func NewEditTracker(cap int, maxAge time.Duration, opts ...Option) *EditTracker {
	if cap <= 0 {
		cap = DefaultEditHistory
	}
	if maxAge <= 0 {
		maxAge = DefaultEditMaxAge
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &EditTracker{
		history: make(map[string][]EditRecord),
		cap:     cap,
		maxAge:  maxAge,
		now:     o.now,
	}
}

// RecordEdit records an edit attributed to rng. Edits without a positional
// range (full-document replacements) cannot be attributed to a line and are
// dropped; rng == nil signals that case.
func (t *EditTracker) RecordEdit(uri string, rng *document.Range, text string) {
	if rng == nil {
		return
	}
	now := t.now()
	records := t.purged(t.history[uri], now)
	records = append(records, EditRecord{URI: uri, Range: *rng, Text: text, SeenAt: now})
	if len(records) > t.cap {
		records = records[len(records)-t.cap:]
	}
	t.history[uri] = records
}

// HasRecentEditOnLine reports whether any retained edit spans line and was
// recorded within window.
func (t *EditTracker) HasRecentEditOnLine(uri string, line int, window time.Duration) bool {
	now := t.now()
	for _, rec := range t.history[uri] {
		if rec.Range.SpansLine(line) && now.Sub(rec.SeenAt) <= window {
			return true
		}
	}
	return false
}

// RecentEdits returns the retained edits for uri, oldest first. The returned
// slice is a copy.
func (t *EditTracker) RecentEdits(uri string) []EditRecord {
	records := t.history[uri]
	out := make([]EditRecord, len(records))
	copy(out, records)
	return out
}

// ForgetDocument drops all history for uri.
func (t *EditTracker) ForgetDocument(uri string) {
	delete(t.history, uri)
}

// Sweep forgets every tracked document for which isOpen reports false.
func (t *EditTracker) Sweep(isOpen func(uri string) bool) {
	for uri := range t.history {
		if !isOpen(uri) {
			delete(t.history, uri)
		}
	}
}

// purged drops records older than maxAge, keeping order.
func (t *EditTracker) purged(records []EditRecord, now time.Time) []EditRecord {
	cut := 0
	for cut < len(records) && now.Sub(records[cut].SeenAt) > t.maxAge {
		cut++
	}
	return records[cut:]
}
