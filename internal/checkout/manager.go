package checkout

import "sync"

// Manager keeps one live checkout session per user.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the user's session, creating a fresh one at the shipping
// step on first use.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := NewSession(userID)
	m.sessions[userID] = s
	return s
}

// Reset discards the user's session. Used after a successful submission
// so the next checkout starts clean.
func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
