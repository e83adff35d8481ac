package session

import (
	"sync"
	"time"
)

// Session is one chat's planner-visible state. Identity fields are
// re-stamped on every invocation: the same chat id might be reused by a
// different caller context, and the latest caller wins.
type Session struct {
	ID      string
	UserID  string
	ChatID  string
	Created time.Time
	Updated time.Time

	mu    sync.RWMutex
	state map[string]any
}

// SetState sets a scratch key, updating the Updated timestamp.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = value
	s.Updated = time.Now()
}

// GetState returns a scratch value and its existence flag.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// Store is a process-local session store safe for concurrent access.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore constructs an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: map[string]*Session{}}
}

// Ensure returns the session for id, creating it with the given identity if
// absent and re-stamping the identity fields if present.
func (s *Store) Ensure(id, userID, chatID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		now := time.Now()
		sess = &Session{ID: id, Created: now, Updated: now, state: map[string]any{}}
		s.sessions[id] = sess
	}
	sess.UserID = userID
	sess.ChatID = chatID
	sess.Updated = time.Now()
	return sess
}

// Get returns the session for id if it exists.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
