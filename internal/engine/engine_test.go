package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charmbracelet/ghost/internal/config"
	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/provider"
	"github.com/charmbracelet/ghost/internal/session"
	"github.com/charmbracelet/ghost/internal/trigger"
)

type fakeDoc struct {
	content    string
	languageID string
}

type fakeStore struct {
	mu   sync.Mutex
	docs map[string]fakeDoc
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]fakeDoc)}
}

func (s *fakeStore) set(uri, languageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = fakeDoc{content: content, languageID: languageID}
}

func (s *fakeStore) Lookup(uri string) (string, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[uri]
	return d.content, d.languageID, ok
}

// gatedProvider blocks each request until released, so tests control when
// sessions resolve.
type gatedProvider struct {
	release chan struct{}
	resp    provider.Response
}

func newGatedProvider(resp provider.Response) *gatedProvider {
	return &gatedProvider{release: make(chan struct{}), resp: resp}
}

func (p *gatedProvider) GenerateSuggestions(ctx context.Context, _ provider.RequestContext) (provider.Response, error) {
	select {
	case <-p.release:
		return p.resp, nil
	case <-ctx.Done():
		return provider.Response{}, ctx.Err()
	}
}

func suggestionResponse(content string) provider.Response {
	return provider.Response{Suggestions: []provider.Suggestion{{ID: "s1", Content: content}}}
}

const testURI = "file:///main.go"

func newTestEngine(t *testing.T, p provider.Provider) (*Engine, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.set(testURI, "go", "func main() {\n\t\n}\n")
	eng := New(config.New(config.Default()), store, p)
	eng.OnDocumentOpen(testURI)
	return eng, store
}

func waitForState(t *testing.T, s *session.Session, want session.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.State() == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestOnEditorEvent_TriggersAndSuppresses(t *testing.T) {
	t.Parallel()
	eng, store := newTestEngine(t, newGatedProvider(suggestionResponse("x")))

	// Typing "{" at the end of the first line.
	store.set(testURI, "go", "func main() {\n\t\n}\n")
	d := eng.OnEditorEvent(EditorEvent{
		Kind:     EventChange,
		URI:      testURI,
		Position: document.Position{Line: 0, Character: 13},
		Range:    &document.Range{Start: document.Position{Line: 0, Character: 12}, End: document.Position{Line: 0, Character: 13}},
		Text:     "{",
	})
	require.True(t, d.ShouldTrigger())
	require.Equal(t, trigger.TypeSpecialCharacters, d.Type)

	// Typing directly before existing code is suppressed.
	store.set(testURI, "go", "func main() {\n\tx}\n")
	d = eng.OnEditorEvent(EditorEvent{
		Kind:     EventChange,
		URI:      testURI,
		Position: document.Position{Line: 1, Character: 2},
		Range:    &document.Range{Start: document.Position{Line: 1, Character: 1}, End: document.Position{Line: 1, Character: 2}},
		Text:     "x",
	})
	require.False(t, d.ShouldTrigger())
	require.True(t, d.Suppressed)

	// Unknown documents never trigger.
	d = eng.OnEditorEvent(EditorEvent{Kind: EventCursorMove, URI: "file:///other.go"})
	require.False(t, d.ShouldTrigger())
}

func TestOnEditorEvent_SilentWhileRequestInFlight(t *testing.T) {
	t.Parallel()
	p := newGatedProvider(suggestionResponse("fmt.Println(1)"))
	eng, _ := newTestEngine(t, p)

	s := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeEnter}, testURI, document.Position{Line: 1, Character: 1})
	require.NotNil(t, s)
	require.Equal(t, session.StateRequesting, s.State())

	d := eng.OnEditorEvent(EditorEvent{
		Kind:     EventChange,
		URI:      testURI,
		Position: document.Position{Line: 1, Character: 1},
		Range:    &document.Range{Start: document.Position{Line: 1, Character: 0}, End: document.Position{Line: 1, Character: 1}},
		Text:     "f",
	})
	require.False(t, d.ShouldTrigger())

	close(p.release)
	waitForState(t, s, session.StateActive)

	// Once resolved, evaluation resumes.
	d = eng.OnEditorEvent(EditorEvent{Kind: EventCursorMove, URI: testURI, Position: document.Position{Line: 1, Character: 1}})
	require.True(t, d.ShouldTrigger())
}

func TestOnRenderRequested_PlainCompletion(t *testing.T) {
	t.Parallel()
	p := newGatedProvider(suggestionResponse("fmt.Println(1)"))
	eng, store := newTestEngine(t, p)
	pos := document.Position{Line: 1, Character: 1}

	s := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeClassifier}, testURI, pos)
	close(p.release)
	waitForState(t, s, session.StateActive)

	// Unchanged document: the whole suggestion renders.
	r, ok := eng.OnRenderRequested(s, testURI, pos)
	require.True(t, ok)
	require.Equal(t, KindCompletion, r.Kind)
	require.Equal(t, "fmt.Println(1)", r.Text)

	// The user typed a prefix of the suggestion meanwhile: only the
	// remainder renders.
	store.set(testURI, "go", "func main() {\n\tfmt.Pr\n}\n")
	r, ok = eng.OnRenderRequested(s, testURI, document.Position{Line: 1, Character: 7})
	require.True(t, ok)
	require.Equal(t, "intln(1)", r.Text)
}

func TestOnRenderRequested_DiscardsStale(t *testing.T) {
	t.Parallel()
	p := newGatedProvider(suggestionResponse("fmt.Println(1)"))
	eng, store := newTestEngine(t, p)
	pos := document.Position{Line: 1, Character: 1}

	s := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeClassifier}, testURI, pos)
	close(p.release)
	waitForState(t, s, session.StateActive)

	// The document diverged from the session's left context.
	store.set(testURI, "go", "func other() {\n\t\n}\n")
	_, ok := eng.OnRenderRequested(s, testURI, pos)
	require.False(t, ok)
}

func TestOnRenderRequested_AddOnlyDiffBecomesCompletion(t *testing.T) {
	t.Parallel()
	diffText := "@@ -1,3 +1,4 @@\n func main() {\n+\tfmt.Println(1)\n \t\n }\n"
	p := newGatedProvider(suggestionResponse(diffText))
	eng, _ := newTestEngine(t, p)
	pos := document.Position{Line: 1, Character: 1}

	s := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeEnter}, testURI, pos)
	close(p.release)
	waitForState(t, s, session.StateActive)

	r, ok := eng.OnRenderRequested(s, testURI, pos)
	require.True(t, ok)
	require.Equal(t, KindCompletion, r.Kind)
	require.Equal(t, "fmt.Println(1)", r.Text)
}

func TestOnRenderRequested_EditDiffRendersOnUnchangedDoc(t *testing.T) {
	t.Parallel()
	p := newGatedProvider(suggestionResponse("@@ -2,1 +2,1 @@\n-\tfoo()\n+\tbar()\n"))
	eng, store := newTestEngine(t, p)
	store.set(testURI, "go", "func main() {\n\tfoo()\n}\n")
	pos := document.Position{Line: 1, Character: 6}

	s := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeClassifier}, testURI, pos)
	close(p.release)
	waitForState(t, s, session.StateActive)

	r, ok := eng.OnRenderRequested(s, testURI, pos)
	require.True(t, ok)
	require.Equal(t, KindEdit, r.Kind)
	require.Contains(t, r.Text, "+\tbar()")
}

func TestOnRenderRequested_EditDiffDiscardedAfterSnapshotEvicted(t *testing.T) {
	t.Parallel()
	p := newGatedProvider(suggestionResponse("@@ -2,1 +2,1 @@\n-\tfoo()\n+\tbar()\n"))
	eng, store := newTestEngine(t, p)
	store.set(testURI, "go", "func main() {\n\tfoo()\n}\n")
	pos := document.Position{Line: 1, Character: 6}

	s := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeClassifier}, testURI, pos)
	close(p.release)
	waitForState(t, s, session.StateActive)

	// Closing the document drops the retained snapshot; without it the diff
	// has nothing to anchor against even though the session is still active.
	eng.OnDocumentClose(testURI)

	_, ok := eng.OnRenderRequested(s, testURI, pos)
	require.False(t, ok)
}

func TestOnRenderRequested_SupersededSessionDiscarded(t *testing.T) {
	t.Parallel()
	p := newGatedProvider(suggestionResponse("fmt.Println(1)"))
	eng, _ := newTestEngine(t, p)
	pos := document.Position{Line: 1, Character: 1}

	first := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeClassifier}, testURI, pos)
	second := eng.OnSuggestionRequested(context.Background(), trigger.Decision{Type: trigger.TypeClassifier}, testURI, pos)
	close(p.release)
	waitForState(t, second, session.StateActive)

	_, ok := eng.OnRenderRequested(first, testURI, pos)
	require.False(t, ok)
	_, ok = eng.OnRenderRequested(nil, testURI, pos)
	require.False(t, ok)
}

func TestOnSuggestionRejected_CoolsDownEditPrediction(t *testing.T) {
	t.Parallel()
	eng, store := newTestEngine(t, newGatedProvider(suggestionResponse("x")))
	store.set(testURI, "go", "func main() {\n\tif  x {\n}\n")
	pos := document.Position{Line: 1, Character: 4}

	eng.OnEditorEvent(EditorEvent{
		Kind:     EventChange,
		URI:      testURI,
		Position: pos,
		Range:    &document.Range{Start: document.Position{Line: 1, Character: 3}, End: pos},
		Text:     "f",
	})

	d := eng.ShouldTriggerEditPrediction(testURI, pos)
	require.True(t, d.Trigger)
	require.Equal(t, trigger.ReasonAfterKeyword, d.Reason)

	eng.OnSuggestionRejected()
	d = eng.ShouldTriggerEditPrediction(testURI, pos)
	require.False(t, d.Trigger)
	require.Equal(t, trigger.ReasonRejectionCooldown, d.Reason)
}

func TestOnDocumentClose_ForgetsState(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t, newGatedProvider(suggestionResponse("x")))
	pos := document.Position{Line: 1, Character: 1}

	eng.OnEditorEvent(EditorEvent{
		Kind:     EventChange,
		URI:      testURI,
		Position: pos,
		Range:    &document.Range{Start: document.Position{Line: 1, Character: 0}, End: pos},
		Text:     "x",
	})
	eng.OnDocumentClose(testURI)

	// With tracker state gone, the recent-edit gate fails.
	d := eng.ShouldTriggerEditPrediction(testURI, pos)
	require.False(t, d.Trigger)
	require.Equal(t, trigger.ReasonNoRecentEdit, d.Reason)
}
