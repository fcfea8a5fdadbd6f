package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/ghost/internal/provider"
	"github.com/charmbracelet/ghost/internal/pubsub"
)

// DefaultLogSize is the number of recent sessions retained in the log.
const DefaultLogSize = 5

// Event is published when a session changes lifecycle state.
type Event struct {
	SessionID string
	State     State
	Error     string // set for StateError events
}

// Manager owns the current suggestion session and a bounded log of recent
// ones. Creating a new session always closes the prior one first, so at
// most one session is ever active.
type Manager struct {
	mu       sync.Mutex
	provider provider.Provider
	broker   *pubsub.Broker[Event]
	log      []*Session
	logCap   int
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogSize sets the session log capacity.
func WithLogSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.logCap = n
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager that resolves sessions against p.
func NewManager(p provider.Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: p,
		broker:   pubsub.NewBroker[Event](),
		logCap:   DefaultLogSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe returns a channel of session lifecycle events. The subscription
// ends when ctx is done.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return m.broker.Subscribe(ctx)
}

// CreateSession closes any prior session, constructs a new one in
// StateRequesting and appends it to the log, evicting the oldest entry when
// over capacity. The new session is the current one from this point on; the
// prior session's in-flight response, if any, will be ignored.
func (m *Manager) CreateSession(data Data) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev := m.currentLocked(); prev != nil && prev.close() {
		slog.Debug("closed superseded session", "session_id", prev.ID)
		m.broker.Publish(pubsub.UpdatedEvent, Event{SessionID: prev.ID, State: StateClosed})
	}

	s := newSession(data, m.now())
	m.log = append(m.log, s)
	if len(m.log) > m.logCap {
		m.log = m.log[len(m.log)-m.logCap:]
	}
	slog.Debug("created session",
		"session_id", s.ID,
		"trigger", string(s.TriggerType),
		"uri", s.Request.FileContext.URI)
	return s
}

// InitializeSession invokes the suggestion provider for s and applies the
// outcome: ACTIVE with candidates on success, ERROR on failure. A session
// closed while the request was in flight is left untouched; the late
// response is dropped.
func (m *Manager) InitializeSession(ctx context.Context, s *Session) error {
	resp, err := m.provider.GenerateSuggestions(ctx, s.Request)
	if err != nil {
		if s.fail(err) {
			m.broker.Publish(pubsub.UpdatedEvent, Event{SessionID: s.ID, State: StateError, Error: err.Error()})
		} else {
			slog.Debug("dropping failure for superseded session", "session_id", s.ID)
		}
		return err
	}
	if !s.resolve(resp) {
		slog.Debug("dropping response for superseded session", "session_id", s.ID)
		return nil
	}
	m.broker.Publish(pubsub.UpdatedEvent, Event{SessionID: s.ID, State: StateActive})
	slog.Debug("session active",
		"session_id", s.ID,
		"suggestions", len(resp.Suggestions),
		"request_id", resp.ResponseContext.RequestID)
	return nil
}

// ActiveSession returns the current session if it has resolved to
// StateActive, or nil.
func (m *Manager) ActiveSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.currentLocked(); s != nil && s.State() == StateActive {
		return s
	}
	return nil
}

// CurrentSession returns the newest session regardless of state, or nil
// when it has been closed or none exists.
func (m *Manager) CurrentSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

// IsCurrent reports whether s is still the session the manager considers
// current. Late responses are only valid while this holds.
func (m *Manager) IsCurrent(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.log) > 0 && m.log[len(m.log)-1] == s
}

// PreviousSession returns the second-most-recent session in the log, or
// nil.
func (m *Manager) PreviousSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.log) < 2 {
		return nil
	}
	return m.log[len(m.log)-2]
}

// SessionsLog returns the retained sessions, oldest first, newest last. The
// returned slice is a copy.
func (m *Manager) SessionsLog() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, len(m.log))
	copy(out, m.log)
	return out
}

// currentLocked returns the newest non-closed session. m.mu must be held.
func (m *Manager) currentLocked() *Session {
	if len(m.log) == 0 {
		return nil
	}
	s := m.log[len(m.log)-1]
	if s.State() == StateClosed {
		return nil
	}
	return s
}
