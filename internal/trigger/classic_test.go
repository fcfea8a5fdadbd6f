package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charmbracelet/ghost/internal/config"
	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/language"
	"github.com/charmbracelet/ghost/internal/tracker"
)

// newTestEngine wires a trigger engine over fresh trackers and returns the
// pieces tests need to manipulate directly.
func newTestEngine(t *testing.T, clock func() time.Time) (*Engine, *tracker.CursorTracker, *tracker.EditTracker) {
	t.Helper()
	if clock == nil {
		clock = time.Now
	}
	cursors := tracker.NewCursorTracker(100, tracker.WithClock(clock))
	edits := tracker.NewEditTracker(100, 5*time.Minute, tracker.WithClock(clock))
	cfg := config.New(config.Default())
	e := NewEngine(cursors, edits, language.NewRegistry(), cfg, WithClock(clock))
	return e, cursors, edits
}

func fc(left, right string) document.FileContext {
	return document.FileContext{URI: "file:///t.go", LanguageID: "go", Left: left, Right: right}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t, nil)

	tests := []struct {
		name string
		left string
		want Type
	}{
		{"empty file", "", TypeClassifier},
		{"plain identifier", "foo.ba", TypeClassifier},
		{"open brace", "func main() {", TypeSpecialCharacters},
		{"paren pair", "doWork()", TypeSpecialCharacters},
		{"colon", "def foo():", TypeSpecialCharacters},
		{"open bracket", "items[", TypeSpecialCharacters},
		{"fresh line after content", "x := 1\n", TypeEnter},
		{"fresh line with indent", "x := 1\n\t\t", TypeEnter},
		{"special wins on preceding line", "func main() {\n\t", TypeSpecialCharacters},
		{"mid word no newline", "hel", TypeClassifier},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, e.Classify(fc(tt.left, "")))
		})
	}
}

func TestClassifyRawEdit(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t, nil)

	tests := []struct {
		name     string
		inserted string
		want     Type
	}{
		{"empty", "", TypeNone},
		{"plain letter", "a", TypeClassifier},
		{"digit", "7", TypeClassifier},
		{"dot", ".", TypeClassifier},
		{"open paren", "(", TypeSpecialCharacters},
		{"colon", ":", TypeSpecialCharacters},
		{"newline", "\n", TypeEnter},
		{"newline with indent", "\n    ", TypeEnter},
		{"crlf with indent", "\r\n\t", TypeEnter},
		{"multi-line paste", "a\nb\nc", TypeNone},
		{"multi-char text", "ab", TypeNone},
		{"whitespace reformat", "    ", TypeNone},
		{"comma", ",", TypeNone},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, e.ClassifyRawEdit("go", tt.inserted))
		})
	}
}

func TestClassify_SpecialSequencesPerLanguage(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t, nil)

	// A bracket or colon is structure in Go but plain text in SQL.
	goFC := document.FileContext{URI: "file:///t.go", LanguageID: "go", Left: "items["}
	sqlFC := document.FileContext{URI: "file:///q.sql", LanguageID: "sql", Left: "SELECT name FROM users WHERE id IN ["}
	require.Equal(t, TypeSpecialCharacters, e.Classify(goFC))
	require.Equal(t, TypeClassifier, e.Classify(sqlFC))

	// Parentheses stay special in both.
	sqlParen := document.FileContext{URI: "file:///q.sql", LanguageID: "sql", Left: "INSERT INTO users ("}
	require.Equal(t, TypeSpecialCharacters, e.Classify(sqlParen))

	// The raw fast path consults the same tables.
	require.Equal(t, TypeSpecialCharacters, e.ClassifyRawEdit("go", ":"))
	require.Equal(t, TypeNone, e.ClassifyRawEdit("sql", ":"))
	require.Equal(t, TypeSpecialCharacters, e.ClassifyRawEdit("sql", "("))
}

func TestSuppressed_RightContext(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t, nil)

	// Non-whitespace immediately right of the cursor suppresses.
	require.True(t, e.Suppressed(fc("console.", "log()")))
	// Leading whitespace (or nothing) on the right allows triggering.
	require.False(t, e.Suppressed(fc("console.", " log()")))
	require.False(t, e.Suppressed(fc("console.", "")))
	require.False(t, e.Suppressed(fc("console.", "   ")))
	// Right context on a later line does not suppress.
	require.False(t, e.Suppressed(fc("console.", "\nnext line")))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t, nil)

	d := e.Evaluate(fc("console.", " log()"), ".")
	require.True(t, d.ShouldTrigger())
	require.Equal(t, TypeClassifier, d.Type)

	d = e.Evaluate(fc("console.", "log()"), ".")
	require.False(t, d.ShouldTrigger())
	require.True(t, d.Suppressed)

	d = e.Evaluate(fc("x := 1\n", ""), "\n")
	require.True(t, d.ShouldTrigger())
	require.Equal(t, TypeEnter, d.Type)

	// A paste never triggers regardless of the site.
	d = e.Evaluate(fc("x := 1\n", ""), "a\nb")
	require.False(t, d.ShouldTrigger())
	require.Equal(t, TypeNone, d.Type)

	// Pure cursor movement skips the raw-edit gate.
	d = e.Evaluate(fc("func main() {", ""), "")
	require.True(t, d.ShouldTrigger())
	require.Equal(t, TypeSpecialCharacters, d.Type)
}
