package memory

import (
	"context"
	"sync"
	"time"

	"debug-challenge/internal/domain"
	"github.com/google/uuid"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]session
}

type session struct {
	accountID int64
	expiresAt time.Time
}

// NewSessionStore keeps sessions for ttl; a non-positive ttl never expires them.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]session),
	}
}

func (s *SessionStore) Create(_ context.Context, accountID int64) (string, error) {
	id := uuid.NewString()
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}
	s.sessions[id] = session{accountID: accountID, expiresAt: expiresAt}
	return id, nil
}

func (s *SessionStore) Lookup(_ context.Context, sessionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.expired(s.clock()) {
		return 0, domain.ErrSessionNotFound
	}
	return sess.accountID, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// sweepLocked drops expired sessions so the map does not grow without bound.
func (s *SessionStore) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if sess.expired(now) {
			delete(s.sessions, id)
		}
	}
}

func (s session) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}
