package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]ports.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]ports.Session{}, now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session ports.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return false, nil
	}
	return !session.Expired(s.now()), nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var purged int64
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}
