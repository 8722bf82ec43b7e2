package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/internal/services/events"
	"github.com/jwebster45206/campaign-engine/internal/storage"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

// Manager owns every live session in the process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	reg         *quest.Registry
	chain       *levels.Chain
	store       storage.Storage
	broadcaster *events.Broadcaster
	tickHz      int
	logger      *slog.Logger
}

// NewManager creates a session manager over shared campaign data and storage.
func NewManager(reg *quest.Registry, chain *levels.Chain, store storage.Storage, broadcaster *events.Broadcaster, tickHz int, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		reg:         reg,
		chain:       chain,
		store:       store,
		broadcaster: broadcaster,
		tickHz:      tickHz,
		logger:      logger,
	}
}

// Create starts a new session in the menu phase and registers it.
func (m *Manager) Create() *Session {
	s := New(m.reg, m.chain, m.store, m.broadcaster, m.tickHz, m.logger)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Info("Session created", "session_id", s.ID.String())
	return s
}

// Get returns a session by id, or nil if it doesn't exist.
func (m *Manager) Get(id uuid.UUID) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove stops and unregisters a session.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.Close()
		m.logger.Info("Session removed", "session_id", id.String())
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
