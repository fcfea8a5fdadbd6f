package patch

import (
	"log/slog"
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"

	"github.com/charmbracelet/ghost/internal/document"
)

// Anchor is the mutable reconciliation state of one suggestion: the diff as
// last merged, the document snapshot it applies to, and the left context it
// was anchored at. Reconcile rewrites the anchor to the live state on
// success so repeated calls stay incremental.
type Anchor struct {
	Diff     string
	Snapshot document.Snapshot
	Left     string
}

// Reconcile re-validates a suggestion against the live document. The second
// return is false when the suggestion must be discarded: the anchor no
// longer matches, the user moved backward or across a line boundary, or the
// suggestion has nothing left to offer after overlap trimming.
//
// On success the anchor is updated to the live snapshot and a freshly
// regenerated diff, and the text still worth inserting at the live cursor is
// returned.
func Reconcile(anchor *Anchor, live document.Snapshot, liveFC document.FileContext) (string, bool) {
	// The left context may only grow, and only within the trigger line.
	if !strings.HasPrefix(liveFC.Left, anchor.Left) {
		slog.Debug("discarding suggestion: left context shrank", "uri", liveFC.URI)
		return "", false
	}
	typed := liveFC.Left[len(anchor.Left):]
	if strings.ContainsRune(typed, '\n') {
		slog.Debug("discarding suggestion: cursor crossed a line boundary", "uri", liveFC.URI)
		return "", false
	}

	if !strings.HasPrefix(anchor.Snapshot.Content, anchor.Left) {
		slog.Debug("discarding suggestion: anchor does not match its snapshot", "uri", liveFC.URI)
		return "", false
	}

	suggested, err := Apply(anchor.Snapshot.Content, anchor.Diff)
	if err != nil {
		slog.Debug("discarding suggestion: cached diff no longer applies", "uri", liveFC.URI, "error", err)
		return "", false
	}

	// Carve the insertion out of the suggested full content using the
	// original anchor, then re-anchor it on what the user typed since.
	if !strings.HasPrefix(suggested, anchor.Left) {
		slog.Debug("discarding suggestion: suggested content diverges before cursor", "uri", liveFC.URI)
		return "", false
	}
	tail := suggested[len(anchor.Left):]
	origRight := anchor.Snapshot.Content[len(anchor.Left):]
	insertion, ok := strings.CutSuffix(tail, origRight)
	if !ok {
		slog.Debug("discarding suggestion: edit extends past insertion point", "uri", liveFC.URI)
		return "", false
	}
	if !strings.HasPrefix(insertion, typed) {
		slog.Debug("discarding suggestion: typed text diverges from suggestion", "uri", liveFC.URI)
		return "", false
	}
	remaining := insertion[len(typed):]

	final := TruncateAgainstRightContext(remaining, liveFC.Right)
	if final == "" {
		slog.Debug("discarding suggestion: fully consumed by document text", "uri", liveFC.URI)
		return "", false
	}

	// Re-anchor on the live state so the next reconciliation starts here
	// instead of replaying history.
	merged := liveFC.Left + final + liveFC.Right
	anchor.Diff = udiff.Unified("current", "suggested", live.Content, merged)
	anchor.Snapshot = live
	anchor.Left = liveFC.Left
	return final, true
}
