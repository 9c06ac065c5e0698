// Package session implements the in-process session store: an
// id -> Session map with TTL-bounded lifetime, guarded by a single mutex so
// a session's turns linearize.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

type Session struct {
	ID           string
	Messages     []domain.Message
	Intent       domain.IntentType
	Requirements *domain.Requirements
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TurnCount    int
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create mints a fresh "sess_" + 12 hex char id and stores an empty session.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:        newSessionID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for id, or nil if absent or expired. An expired
// entry is deleted before returning the miss.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) *Session {
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if time.Since(sess.CreatedAt) > s.ttl {
		delete(s.sessions, id)
		return nil
	}
	return sess
}

// GetOrCreate returns the valid session named by id, or mints a new one if
// id is empty or names an absent/expired session.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	if id != "" {
		if sess := s.getLocked(id); sess != nil {
			s.mu.Unlock()
			return sess
		}
	}
	sess := &Session{
		ID:        newSessionID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// AppendMessage appends msg to the session's history, bumps the turn
// counter, and refreshes UpdatedAt. Guarded by the store mutex, so
// concurrent requests for the same session id serialize their appends.
func (s *Store) AppendMessage(id string, msg domain.Message) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getLocked(id)
	if sess == nil {
		return nil
	}
	sess.Messages = append(sess.Messages, msg)
	if msg.Role == domain.RoleUser {
		sess.TurnCount++
	}
	sess.UpdatedAt = time.Now()
	return sess
}

// Update replaces the intent/requirements of a stored session under lock.
func (s *Store) Update(id string, intent domain.IntentType, reqs *domain.Requirements) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getLocked(id)
	if sess == nil {
		return
	}
	sess.Intent = intent
	sess.Requirements = reqs
	sess.UpdatedAt = time.Now()
}

// Count returns the number of live (non-expired) sessions, used by the
// health endpoint's active_sessions field.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.ttl {
			delete(s.sessions, id)
			continue
		}
		n++
	}
	return n
}

func newSessionID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return "sess_" + hex.EncodeToString(b[:])
}
