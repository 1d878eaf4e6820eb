// Package session keeps signed-in sessions in memory. Each session owns its
// favorites store, so favorites last as long as the session does.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/favorites"
	"github.com/MrSnakeDoc/agora/internal/metrics"
)

// Session is one signed-in browser.
type Session struct {
	ID        string
	Favorites *favorites.Store
	CreatedAt time.Time

	// User is the account as it was at sign-in. Its ID is stable; read the
	// current record from the user directory.
	User *domain.User

	lastSeen atomic.Int64 // unix nanos
}

// LastSeen returns the time of the last authenticated request.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(at time.Time) {
	s.lastSeen.Store(at.UnixNano())
}

// Manager owns every live session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTTL time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewManager creates a manager. Sessions idle for longer than idleTTL are
// no longer returned by Get and are removed by Sweep.
func NewManager(idleTTL time.Duration, m *metrics.Metrics) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		metrics:  m,
		now:      time.Now,
	}
}

// Create opens a session for user with an empty favorites store.
func (m *Manager) Create(user *domain.User) *Session {
	now := m.now()
	s := &Session{
		ID:        ulid.Make().String(),
		User:      user,
		Favorites: favorites.NewStore(),
		CreatedAt: now,
	}
	s.touch(now)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || m.idle(s, m.now()) {
		return nil, false
	}
	return s, true
}

// Touch records activity on a session.
func (m *Manager) Touch(s *Session) {
	s.touch(m.now())
}

// Destroy removes a session. Unknown ids are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
}

// Sweep removes sessions idle at now and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if m.idle(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
	return removed
}

// Count returns the number of held sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ResetAll empties the favorites of every session. Used between test
// scenarios and by operators.
func (m *Manager) ResetAll() {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	for _, s := range all {
		s.Favorites.Reset()
	}
}

func (m *Manager) idle(s *Session, now time.Time) bool {
	return m.idleTTL > 0 && now.Sub(s.LastSeen()) > m.idleTTL
}
