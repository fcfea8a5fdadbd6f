package document

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultArenaEntries = 128
	defaultArenaTTL     = 5 * time.Minute
)

// Arena stores the most recent snapshot per document URI. Entries are
// evicted by count and by age, whichever triggers first, so a stale snapshot
// can never anchor a reconciliation indefinitely.
type Arena struct {
	entries *expirable.LRU[string, Snapshot]
}

// NewArena creates an arena with the given limits. Non-positive values fall
// back to defaults.
func NewArena(maxEntries int, ttl time.Duration) *Arena {
	if maxEntries <= 0 {
		maxEntries = defaultArenaEntries
	}
	if ttl <= 0 {
		ttl = defaultArenaTTL
	}
	return &Arena{
		entries: expirable.NewLRU[string, Snapshot](maxEntries, nil, ttl),
	}
}

// Put stores snap as the current snapshot for its URI, replacing any prior
// one.
func (a *Arena) Put(snap Snapshot) {
	a.entries.Add(snap.URI, snap)
}

// Get returns the current snapshot for uri, if one is retained.
func (a *Arena) Get(uri string) (Snapshot, bool) {
	return a.entries.Get(uri)
}

// Remove drops the snapshot for uri, if any.
func (a *Arena) Remove(uri string) {
	a.entries.Remove(uri)
}

// Len returns the number of retained snapshots.
func (a *Arena) Len() int {
	return a.entries.Len()
}
