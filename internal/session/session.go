// Package session owns the lifecycle of suggestion requests: a state
// machine per request and a manager that guarantees at most one active
// session, retaining a bounded log of recent ones.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/patch"
	"github.com/charmbracelet/ghost/internal/provider"
	"github.com/charmbracelet/ghost/internal/trigger"
)

// State is a session lifecycle state.
type State string

// Session states. REQUESTING is initial; ACTIVE and ERROR are resolution
// outcomes; CLOSED is terminal and reachable from any state when the
// session is superseded.
const (
	StateRequesting State = "REQUESTING"
	StateActive     State = "ACTIVE"
	StateError      State = "ERROR"
	StateClosed     State = "CLOSED"
)

// Data is the input to Manager.CreateSession.
type Data struct {
	TriggerType   trigger.Type
	StartPosition document.Position
	LanguageID    string
	FileContext   document.FileContext
	Snapshot      document.Snapshot
	MaxResults    int
	Supplements   []provider.Supplement
}

// Session is one suggestion request and its resolved or failed outcome.
// It is created by the Manager, mutated only by its own resolution step,
// and closed only by the Manager when superseded.
type Session struct {
	ID            string
	TriggerType   trigger.Type
	StartPosition document.Position
	LanguageID    string
	Request       provider.RequestContext
	Snapshot      document.Snapshot
	CreatedAt     time.Time

	mu          sync.RWMutex
	state       State
	suggestions []provider.Suggestion
	response    provider.ResponseContext
	err         error
	anchor      *patch.Anchor
}

func newSession(data Data, now time.Time) *Session {
	return &Session{
		ID:            uuid.NewString(),
		TriggerType:   data.TriggerType,
		StartPosition: data.StartPosition,
		LanguageID:    data.LanguageID,
		Request: provider.RequestContext{
			FileContext: data.FileContext,
			MaxResults:  data.MaxResults,
			Supplements: data.Supplements,
		},
		Snapshot:  data.Snapshot,
		CreatedAt: now,
		state:     StateRequesting,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Suggestions returns the resolved candidates, in backend order.
func (s *Session) Suggestions() []provider.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestions
}

// ResponseContext returns the backend correlation metadata.
func (s *Session) ResponseContext() provider.ResponseContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.response
}

// Err returns the resolution failure, if the session is in StateError.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Anchor returns the reconciliation anchor for one of the session's
// suggestions, creating it on first use. The anchor persists across
// reconciliation calls so re-merging stays incremental.
func (s *Session) Anchor(diffText string) *patch.Anchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anchor == nil {
		s.anchor = &patch.Anchor{
			Diff:     diffText,
			Snapshot: s.Snapshot,
			Left:     s.Request.FileContext.Left,
		}
	}
	return s.anchor
}

// resolve transitions REQUESTING -> ACTIVE. Returns false if the session
// was closed while the request was in flight.
func (s *Session) resolve(resp provider.Response) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRequesting {
		return false
	}
	s.state = StateActive
	s.suggestions = resp.Suggestions
	s.response = resp.ResponseContext
	return true
}

// fail transitions REQUESTING -> ERROR. Returns false if the session was
// closed while the request was in flight.
func (s *Session) fail(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRequesting {
		return false
	}
	s.state = StateError
	s.err = err
	return true
}

// close transitions to CLOSED from any state. Returns false if already
// closed.
func (s *Session) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	s.state = StateClosed
	return true
}
