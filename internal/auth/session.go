package auth

import (
	"sync"
	"time"

	"github.com/ukydev/fleet-equipment/internal/models"
)

// Claims represents JWT claims
type Claims struct {
	SessionID string
	Principal models.Principal
	Exp       int64
}

// Session is one authenticated interaction scope. The principal exists
// only while its session does.
type Session struct {
	ID        string           `json:"id"`
	Principal models.Principal `json:"principal"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// SessionStore holds live sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Put stores session under its id, replacing any previous entry.
func (s *SessionStore) Put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Get returns the session with id unless it was deleted or pruned.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete removes a session and reports whether it existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// PruneExpired drops sessions whose expiry is before now and returns how
// many were removed.
func (s *SessionStore) PruneExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
