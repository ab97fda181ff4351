package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pk049/Email-agent/internal/agent"
	"github.com/pk049/Email-agent/internal/logger"
)

// Manager owns session lifecycle: one live record per identity, one writer
// per session, and best-effort snapshots after every completed turn, on
// reset, and on shutdown.
type Manager struct {
	agent *agent.Agent
	store Store

	mu   sync.Mutex
	live map[string]*liveSession
}

// liveSession serializes turns: no two turns for the same session run
// concurrently.
type liveSession struct {
	mu sync.Mutex
	s  *Session
}

// NewManager creates a manager over the given agent and store.
func NewManager(a *agent.Agent, store Store) *Manager {
	return &Manager{
		agent: a,
		store: store,
		live:  make(map[string]*liveSession),
	}
}

// session returns the live record for id, reviving it from the store or
// creating it on first interaction. An empty id mints a new identity.
func (m *Manager) session(ctx context.Context, id string) *liveSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		s := NewSession()
		ls := &liveSession{s: s}
		m.live[s.ID] = ls
		logger.L.Info("session created", "session_id", s.ID)
		return ls
	}

	if ls, ok := m.live[id]; ok {
		return ls
	}

	s, err := m.store.Load(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		s = NewSession()
		s.ID = id
		logger.L.Info("session created", "session_id", id)
	default:
		// Persistence trouble never blocks the conversation; start from an
		// empty history under the same identity.
		logger.L.Error("session load failed", "session_id", id, "error", err)
		s = NewSession()
		s.ID = id
	}

	ls := &liveSession{s: s}
	m.live[id] = ls
	return ls
}

// HandleMessage runs one full turn: append the user entry, drive the turn
// loop, append the produced messages, snapshot, and return the final
// assistant text. The returned session id identifies the (possibly new)
// session.
func (m *Manager) HandleMessage(ctx context.Context, id, text string) (string, string, error) {
	ls := m.session(ctx, id)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.s.Messages = agent.Append(ls.s.Messages, agent.UserMessage(text))

	delta, final, err := m.agent.RunTurn(ctx, ls.s.Messages)

	// The produced messages are kept and persisted even when the turn ended
	// in a terminal error, so the transcript shows what happened.
	ls.s.Messages = agent.Append(ls.s.Messages, delta...)
	ls.s.UpdatedAt = time.Now().UTC()
	m.snapshot(ctx, ls.s)

	if err != nil {
		return ls.s.ID, "", err
	}
	return ls.s.ID, final, nil
}

// History returns the stored transcript for a session, preferring the live
// record over the last snapshot.
func (m *Manager) History(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	ls, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		copied := *ls.s
		copied.Messages = agent.Append(nil, ls.s.Messages...)
		return &copied, nil
	}
	return m.store.Load(ctx, id)
}

// Reset closes the current session and mints a fresh identity. The old
// record keeps its last snapshot; nothing is erased.
func (m *Manager) Reset(ctx context.Context, id string) string {
	m.mu.Lock()
	old, ok := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()

	if ok {
		old.mu.Lock()
		old.s.Status = StatusClosed
		old.s.UpdatedAt = time.Now().UTC()
		m.snapshot(ctx, old.s)
		old.mu.Unlock()
	}

	fresh := m.session(ctx, "")
	fresh.mu.Lock()
	m.snapshot(ctx, fresh.s)
	newID := fresh.s.ID
	fresh.mu.Unlock()

	logger.L.Info("session reset", "old_session_id", id, "session_id", newID)
	return newID
}

// Shutdown snapshots every live session. Best effort: failures are logged
// and ignored.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*liveSession, 0, len(m.live))
	for _, ls := range m.live {
		sessions = append(sessions, ls)
	}
	m.mu.Unlock()

	for _, ls := range sessions {
		ls.mu.Lock()
		m.snapshot(ctx, ls.s)
		ls.mu.Unlock()
	}
}

// snapshot persists the full session record. Persistence failures are
// reported to the log and swallowed; they never abort a turn.
func (m *Manager) snapshot(ctx context.Context, s *Session) {
	if err := m.store.Save(ctx, s); err != nil {
		logger.L.Error("session snapshot failed", "session_id", s.ID, "error", err)
	}
}
