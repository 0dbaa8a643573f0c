package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lendenpay/portal/internal/platform/session"
)

const sessionKeyPrefix = "session:"

// SessionStore implements session.Store on Redis
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis session store
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save persists a session with the given lifetime
func (s *SessionStore) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.client.Del(ctx, sessionKeyPrefix+id.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}
