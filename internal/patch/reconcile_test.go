package patch

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charmbracelet/ghost/internal/document"
)

// newAnchor builds an anchor for a suggestion inserting text at the cursor
// of content split into left/right.
func newAnchor(t *testing.T, left, right, insertion string) *Anchor {
	t.Helper()
	original := left + right
	hunkDiff := insertionDiff(t, original, left+insertion+right)
	return &Anchor{
		Diff:     hunkDiff,
		Snapshot: document.Snapshot{URI: "file:///t.go", Content: original, TakenAt: time.Now()},
		Left:     left,
	}
}

// insertionDiff writes a minimal single-hunk diff turning old into new,
// where new differs from old by one inserted run of lines at the cursor
// line. Tests construct diffs by hand to stay independent of any diff
// generator.
func insertionDiff(t *testing.T, old, updated string) string {
	t.Helper()
	oldLines := strings.Split(old, "\n")
	newLines := strings.Split(updated, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))

	// Naive alignment: common prefix lines as context, then the change.
	i := 0
	for i < len(oldLines) && i < len(newLines) && oldLines[i] == newLines[i] {
		b.WriteString(" " + oldLines[i] + "\n")
		i++
	}
	j := len(oldLines)
	k := len(newLines)
	for j > i && k > i && oldLines[j-1] == newLines[k-1] {
		j--
		k--
	}
	for _, l := range oldLines[i:j] {
		b.WriteString("-" + l + "\n")
	}
	for _, l := range newLines[i:k] {
		b.WriteString("+" + l + "\n")
	}
	for _, l := range oldLines[j:] {
		b.WriteString(" " + l + "\n")
	}
	return b.String()
}

func TestReconcile_UnchangedDocument(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\t"
	right := "\n}"
	anchor := newAnchor(t, left, right, "fmt.Println(1)")

	live := anchor.Snapshot
	fc := document.FileContext{URI: live.URI, Left: left, Right: right}

	got, ok := Reconcile(anchor, live, fc)
	require.True(t, ok)
	require.Equal(t, "fmt.Println(1)", got)
}

func TestReconcile_UserTypedPrefixOfSuggestion(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\t"
	right := "\n}"
	anchor := newAnchor(t, left, right, "fmt.Println(1)")

	// The user has typed "fmt.Pr" since the request went out.
	liveContent := left + "fmt.Pr" + right
	live := document.Snapshot{URI: anchor.Snapshot.URI, Content: liveContent, TakenAt: time.Now()}
	fc := document.FileContext{URI: live.URI, Left: left + "fmt.Pr", Right: right}

	got, ok := Reconcile(anchor, live, fc)
	require.True(t, ok)
	require.Equal(t, "intln(1)", got)
}

func TestReconcile_DiscardsWhenLeftContextShrank(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\tfmt."
	anchor := newAnchor(t, left, "\n}", "Println(1)")

	// Backspace: live left is shorter than the anchor's.
	live := document.Snapshot{URI: anchor.Snapshot.URI, Content: "func main() {\n\tfmt\n}", TakenAt: time.Now()}
	fc := document.FileContext{URI: live.URI, Left: "func main() {\n\tfmt", Right: "\n}"}

	_, ok := Reconcile(anchor, live, fc)
	require.False(t, ok)
}

func TestReconcile_DiscardsWhenDeltaCrossesNewline(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\t"
	anchor := newAnchor(t, left, "\n}", "fmt.Println(1)")

	liveLeft := left + "x := 1\n\t"
	live := document.Snapshot{URI: anchor.Snapshot.URI, Content: liveLeft + "\n}", TakenAt: time.Now()}
	fc := document.FileContext{URI: live.URI, Left: liveLeft, Right: "\n}"}

	_, ok := Reconcile(anchor, live, fc)
	require.False(t, ok)
}

func TestReconcile_DiscardsWhenTypedTextDiverges(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\t"
	anchor := newAnchor(t, left, "\n}", "fmt.Println(1)")

	// The user typed something the suggestion does not predict.
	liveLeft := left + "os."
	live := document.Snapshot{URI: anchor.Snapshot.URI, Content: liveLeft + "\n}", TakenAt: time.Now()}
	fc := document.FileContext{URI: live.URI, Left: liveLeft, Right: "\n}"}

	_, ok := Reconcile(anchor, live, fc)
	require.False(t, ok)
}

func TestReconcile_DiscardsWhenFullyTyped(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\t"
	anchor := newAnchor(t, left, "\n}", "fmt.Println(1)")

	liveLeft := left + "fmt.Println(1)"
	live := document.Snapshot{URI: anchor.Snapshot.URI, Content: liveLeft + "\n}", TakenAt: time.Now()}
	fc := document.FileContext{URI: live.URI, Left: liveLeft, Right: "\n}"}

	_, ok := Reconcile(anchor, live, fc)
	require.False(t, ok)
}

func TestReconcile_ReanchorsForIncrementalCalls(t *testing.T) {
	t.Parallel()
	left := "func main() {\n\t"
	right := "\n}"
	anchor := newAnchor(t, left, right, "fmt.Println(1)")

	liveLeft := left + "fmt."
	live := document.Snapshot{URI: anchor.Snapshot.URI, Content: liveLeft + right, TakenAt: time.Now()}
	fc := document.FileContext{URI: live.URI, Left: liveLeft, Right: right}

	got, ok := Reconcile(anchor, live, fc)
	require.True(t, ok)
	require.Equal(t, "Println(1)", got)

	// The anchor now points at the live state.
	require.Equal(t, liveLeft, anchor.Left)
	require.Equal(t, live.Content, anchor.Snapshot.Content)
	require.NotEmpty(t, anchor.Diff)

	// A second reconciliation against the same state is a no-op merge.
	got2, ok2 := Reconcile(anchor, live, fc)
	require.True(t, ok2)
	require.Equal(t, "Println(1)", got2)
}
