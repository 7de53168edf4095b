package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"debug-challenge/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps login sessions in Redis so any instance can authenticate a request
// and logout revokes the session everywhere.
// Sessions are stored as: SET challenge:session:{sessionID} {accountID} EX ttl
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore keeps sessions for ttl; zero keeps them until logout.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *SessionStore) Create(ctx context.Context, accountID int64) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, s.key(id), accountID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (int64, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrSessionNotFound
	}
	return accountID, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "challenge:session:" + sessionID
}
