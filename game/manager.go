package game

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"transport-net/models"
	"transport-net/store"
)

// ErrSessionNotFound is returned for unknown session ids and for sessions
// owned by another user.
var ErrSessionNotFound = errors.New("session not found")

// Manager keeps the running sessions of a server.
type Manager struct {
	repo store.Repository
	opts Options

	mu       sync.Mutex
	sessions map[string]*managed
	closed   bool
}

type managed struct {
	session *Session
	store   store.NetworkStore
	stop    context.CancelFunc
}

// NewManager creates a manager that opens user stores from repo.
func NewManager(repo store.Repository, opts Options) *Manager {
	return &Manager{
		repo:     repo,
		opts:     opts,
		sessions: make(map[string]*managed),
	}
}

// Create starts a session for userID. Guest sessions never touch the
// repository.
func (m *Manager) Create(ctx context.Context, userID string, req models.CreateSessionRequest) (*Session, error) {
	var st store.NetworkStore
	if req.Guest {
		st = store.NewGuestStore()
	} else {
		st = m.repo.ForUser(userID)
	}

	sess, err := NewSession(ctx, uuid.NewString(), userID, st, req.NetworkID, m.opts)
	if err != nil {
		st.Close()
		return nil, err
	}

	runCtx, stop := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		stop()
		sess.Close()
		st.Close()
		return nil, errors.New("session manager closed")
	}
	m.sessions[sess.ID()] = &managed{session: sess, store: st, stop: stop}
	m.mu.Unlock()

	if m.opts.FrameInterval > 0 {
		go sess.Run(runCtx, m.opts.FrameInterval)
	}
	return sess, nil
}

// Get returns the session with id when userID owns it.
func (m *Manager) Get(id, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || e.session.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Len returns the number of running sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the session and flushes its pending store calls.
func (m *Manager) Close(id, userID string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok || e.session.UserID() != userID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	e.shutdown()
	return nil
}

// CloseAll stops every session. The manager rejects new sessions afterwards.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	entries := make([]*managed, 0, len(m.sessions))
	for id, e := range m.sessions {
		entries = append(entries, e)
		delete(m.sessions, id)
	}
	m.closed = true
	m.mu.Unlock()

	for _, e := range entries {
		e.shutdown()
	}
}

func (e *managed) shutdown() {
	e.stop()
	e.session.Close()
	e.store.Close()
}
