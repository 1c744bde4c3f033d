package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Manager is an in-memory registry of sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	opts     Options
}

// NewManager creates a registry whose sessions share opts.
func NewManager(opts Options) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		opts:     opts,
	}
}

// Create starts and registers a new session.
func (m *Manager) Create() *Session {
	s := New(m.opts)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	s.logger.Info("Session created")
	return s
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete forgets a session. A call already in flight still completes.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
