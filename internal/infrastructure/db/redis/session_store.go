package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// commander is the subset of the go-redis client used by SessionStore.
type commander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionStore keeps the latest issued token per user.
// Key format: session:<user_uid>
type SessionStore struct {
	client commander
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client commander) *SessionStore {
	return &SessionStore{client: client}
}

// Save overwrites the user's session with token; the entry expires after ttl.
func (s *SessionStore) Save(ctx context.Context, userUID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(userUID), token, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Exists reports whether token is the live session recorded for the user.
func (s *SessionStore) Exists(ctx context.Context, userUID, token string) (bool, error) {
	current, err := s.client.Get(ctx, s.key(userUID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("load session: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(token)) == 1, nil
}

func (s *SessionStore) key(userUID string) string {
	return "session:" + userUID
}
