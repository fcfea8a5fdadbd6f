// Package engine is the composition root of the inline-completion layer:
// it wires trackers, trigger policy, sessions and diff reconciliation
// behind the three operations the protocol glue calls.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/ghost/internal/config"
	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/language"
	"github.com/charmbracelet/ghost/internal/patch"
	"github.com/charmbracelet/ghost/internal/provider"
	"github.com/charmbracelet/ghost/internal/session"
	"github.com/charmbracelet/ghost/internal/tracker"
	"github.com/charmbracelet/ghost/internal/trigger"
)

// DocumentStore supplies the live text and language of open documents. The
// workspace synchronization layer implements it.
type DocumentStore interface {
	Lookup(uri string) (content, languageID string, ok bool)
}

// EventKind distinguishes editor events.
type EventKind string

// Editor event kinds.
const (
	EventChange     EventKind = "change"
	EventCursorMove EventKind = "cursorMove"
)

// EditorEvent is one text-change or cursor-move notification.
type EditorEvent struct {
	Kind     EventKind
	URI      string
	Position document.Position
	// Range and Text describe a text change; Range is nil for
	// full-document replacements, which cannot be attributed to a line.
	Range *document.Range
	Text  string
}

// RenderKind is the type of a final render instruction.
type RenderKind string

// Render kinds: a full completion to insert at the cursor, or a partial
// edit expressed as a unified diff.
const (
	KindCompletion RenderKind = "completion"
	KindEdit       RenderKind = "edit"
)

// Render is the final instruction handed back to the protocol glue.
type Render struct {
	Text string
	Kind RenderKind
}

// Engine ties the layer together. Public methods serialize on an internal
// mutex so the protocol glue may call them from transport goroutines.
type Engine struct {
	mu sync.Mutex

	cfg       *config.Config
	store     DocumentStore
	languages *language.Registry
	cursors   *tracker.CursorTracker
	edits     *tracker.EditTracker
	triggers  *trigger.Engine
	sessions  *session.Manager
	arena     *document.Arena

	open           map[string]struct{}
	lastRejectedAt time.Time
	now            func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New wires an engine over the given provider and document store.
func New(cfg *config.Config, store DocumentStore, p provider.Provider, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		store: store,
		open:  make(map[string]struct{}),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	o := cfg.Get()
	clock := tracker.WithClock(e.now)
	e.languages = language.NewRegistry()
	e.cursors = tracker.NewCursorTracker(o.CursorHistory, clock)
	e.edits = tracker.NewEditTracker(o.EditHistory, o.EditMaxAge.Std(), clock)
	e.triggers = trigger.NewEngine(e.cursors, e.edits, e.languages, cfg, trigger.WithClock(e.now))
	e.sessions = session.NewManager(p, session.WithLogSize(o.SessionLog), session.WithClock(e.now))
	e.arena = document.NewArena(o.SnapshotEntries, o.SnapshotTTL.Std())
	return e
}

// Sessions exposes the session manager, mainly for event subscriptions.
func (e *Engine) Sessions() *session.Manager { return e.sessions }

// OnDocumentOpen marks uri as open so the sweeper keeps its tracker state.
func (e *Engine) OnDocumentOpen(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[uri] = struct{}{}
}

// OnDocumentClose drops all tracker and snapshot state for uri.
func (e *Engine) OnDocumentClose(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.open, uri)
	e.cursors.ForgetDocument(uri)
	e.edits.ForgetDocument(uri)
	e.arena.Remove(uri)
}

// OnSuggestionRejected records an explicit rejection, feeding the
// edit-prediction cooldown gate.
func (e *Engine) OnSuggestionRejected() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastRejectedAt = e.now()
}

// OnEditorEvent updates the trackers with the event and returns the trigger
// decision for it. Tracker updates happen unconditionally; the decision
// engine is not re-entered while a request for the same document is still
// in flight.
func (e *Engine) OnEditorEvent(ev EditorEvent) trigger.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Kind {
	case EventChange:
		e.edits.RecordEdit(ev.URI, ev.Range, ev.Text)
	case EventCursorMove:
		e.cursors.RecordCursor(ev.URI, ev.Position)
	}

	if cur := e.sessions.CurrentSession(); cur != nil && cur.State() == session.StateRequesting {
		return trigger.Decision{Type: trigger.TypeNone, Reason: "request in flight"}
	}

	content, languageID, ok := e.store.Lookup(ev.URI)
	if !ok {
		return trigger.Decision{Type: trigger.TypeNone, Reason: "unknown document"}
	}
	fc := document.ContextAt(ev.URI, languageID, content, ev.Position)

	inserted := ""
	if ev.Kind == EventChange {
		inserted = ev.Text
	}
	return e.triggers.Evaluate(fc, inserted)
}

// ShouldTriggerEditPrediction evaluates the edit-prediction policy at the
// given cursor site.
func (e *Engine) ShouldTriggerEditPrediction(uri string, pos document.Position) trigger.PredictionDecision {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, languageID, ok := e.store.Lookup(uri)
	if !ok {
		return trigger.PredictionDecision{Reason: "unknown document"}
	}
	fc := document.ContextAt(uri, languageID, content, pos)
	return e.triggers.ShouldTriggerEditPrediction(trigger.PredictionContext{
		URI:            uri,
		LanguageID:     languageID,
		Position:       pos,
		LineLeft:       fc.CurrentLine(),
		LineRight:      fc.RightOfCursorOnLine(),
		LastRejectedAt: e.lastRejectedAt,
	})
}

// OnSuggestionRequested opens a new session for the cursor site and begins
// the asynchronous provider call. Any prior session is closed first.
func (e *Engine) OnSuggestionRequested(ctx context.Context, decision trigger.Decision, uri string, pos document.Position) *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, languageID, ok := e.store.Lookup(uri)
	if !ok {
		return nil
	}
	fc := document.ContextAt(uri, languageID, content, pos)
	snap := document.Snapshot{URI: uri, Content: content, TakenAt: e.now()}
	e.arena.Put(snap)

	s := e.sessions.CreateSession(session.Data{
		TriggerType:   decision.Type,
		StartPosition: pos,
		LanguageID:    languageID,
		FileContext:   fc,
		Snapshot:      snap,
		MaxResults:    e.cfg.Get().ResultCap,
	})

	// Resolution is asynchronous; the session manager drops the response if
	// the session has been superseded by then.
	go func() {
		if err := e.sessions.InitializeSession(ctx, s); err != nil {
			slog.Debug("suggestion request failed", "session_id", s.ID, "error", err)
		}
	}()
	return s
}

// OnRenderRequested reconciles the session's first suggestion against the
// live document and returns the final render instruction, or false for a
// silent discard.
func (e *Engine) OnRenderRequested(s *session.Session, uri string, pos document.Position) (Render, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s == nil || !e.sessions.IsCurrent(s) || s.State() != session.StateActive {
		slog.Debug("discarding render: session no longer current or active")
		return Render{}, false
	}
	suggestions := s.Suggestions()
	if len(suggestions) == 0 {
		slog.Debug("discarding render: empty suggestion list", "session_id", s.ID)
		return Render{}, false
	}
	content, languageID, ok := e.store.Lookup(uri)
	if !ok {
		return Render{}, false
	}
	live := document.Snapshot{URI: uri, Content: content, TakenAt: e.now()}
	liveFC := document.ContextAt(uri, languageID, content, pos)

	raw := suggestions[0].Content
	if !looksLikeDiff(raw) {
		return e.renderCompletion(s, liveFC, raw)
	}

	switch cat := patch.Classify(raw, s.StartPosition.Line); cat {
	case patch.CategoryAddOnly:
		return e.renderCompletion(s, liveFC, patch.ExtractAdditions(raw))
	default:
		return e.renderEdit(s, live, liveFC, raw, cat)
	}
}

// renderCompletion validates a plain insertion against the live cursor
// site: the typed delta and existing left context are stripped, and the
// tail is truncated against upcoming text.
func (e *Engine) renderCompletion(s *session.Session, liveFC document.FileContext, text string) (Render, bool) {
	origLeft := s.Request.FileContext.Left
	if !strings.HasPrefix(liveFC.Left, origLeft) {
		slog.Debug("discarding completion: left context shrank", "session_id", s.ID)
		return Render{}, false
	}
	if strings.ContainsRune(liveFC.Left[len(origLeft):], '\n') {
		slog.Debug("discarding completion: cursor crossed a line boundary", "session_id", s.ID)
		return Render{}, false
	}
	text = patch.StripLeftOverlap(liveFC.Left, text)
	final := patch.TruncateAgainstRightContext(text, liveFC.Right)
	if final == "" {
		slog.Debug("discarding completion: fully consumed by document text", "session_id", s.ID)
		return Render{}, false
	}
	return Render{Text: final, Kind: KindCompletion}, true
}

// renderEdit re-merges a non-insertion diff against the live document. The
// reconciliation base comes from the snapshot arena; an entry evicted by
// count or age means the suggestion can no longer be anchored and is
// discarded. An unchanged document renders the diff as-is; otherwise the
// suggestion must survive reconciliation or be discarded as stale.
func (e *Engine) renderEdit(s *session.Session, live document.Snapshot, liveFC document.FileContext, diffText string, cat patch.Category) (Render, bool) {
	base, ok := e.arena.Get(live.URI)
	if !ok {
		slog.Debug("discarding edit suggestion: anchor snapshot no longer retained",
			"session_id", s.ID, "category", string(cat))
		return Render{}, false
	}
	anchor := s.Anchor(diffText)
	anchor.Snapshot = base
	if live.Content == base.Content {
		return Render{Text: anchor.Diff, Kind: KindEdit}, true
	}
	if _, ok := patch.Reconcile(anchor, live, liveFC); !ok {
		slog.Debug("discarding edit suggestion as stale",
			"session_id", s.ID, "category", string(cat))
		return Render{}, false
	}
	e.arena.Put(live)
	return Render{Text: anchor.Diff, Kind: KindEdit}, true
}

// Sweep forgets tracker state for documents no longer open. Covers close
// notifications the transport never delivered.
func (e *Engine) Sweep() {
	e.mu.Lock()
	defer e.mu.Unlock()
	isOpen := func(uri string) bool {
		_, ok := e.open[uri]
		return ok
	}
	e.cursors.Sweep(isOpen)
	e.edits.Sweep(isOpen)
}

// RunSweeper sweeps on the configured interval until ctx is done.
func (e *Engine) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Get().SweepInterval.Std())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep()
		}
	}
}

func looksLikeDiff(s string) bool {
	return strings.Contains(s, "@@")
}
