// Package trigger decides whether an editor event should result in a
// suggestion request, and under which category. It consumes the trackers and
// language profiles but owns no document state of its own.
package trigger

import (
	"time"

	"github.com/charmbracelet/ghost/internal/config"
	"github.com/charmbracelet/ghost/internal/language"
	"github.com/charmbracelet/ghost/internal/tracker"
)

// Type is a trigger category for the classic completion path.
type Type string

// Classic trigger categories.
const (
	// TypeNone means the event should not trigger a request.
	TypeNone Type = ""
	// TypeClassifier is the default trigger: ordinary typing.
	TypeClassifier Type = "Classifier"
	// TypeSpecialCharacters fires after structural characters like braces.
	TypeSpecialCharacters Type = "SpecialCharacters"
	// TypeEnter fires after a newline plus optional indentation.
	TypeEnter Type = "Enter"
)

// Decision is the outcome of evaluating an editor event.
type Decision struct {
	Type       Type
	Suppressed bool
	Reason     string
}

// ShouldTrigger reports whether a request should actually be sent.
func (d Decision) ShouldTrigger() bool {
	return d.Type != TypeNone && !d.Suppressed
}

// Engine evaluates trigger policy. All methods are synchronous and must be
// called from the event-loop goroutine that owns the trackers.
type Engine struct {
	cursors   *tracker.CursorTracker
	edits     *tracker.EditTracker
	languages *language.Registry
	cfg       *config.Config
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires a trigger engine over the given collaborators.
func NewEngine(cursors *tracker.CursorTracker, edits *tracker.EditTracker, languages *language.Registry, cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cursors:   cursors,
		edits:     edits,
		languages: languages,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
