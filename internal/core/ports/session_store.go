package ports

import (
	"context"
	"time"
)

// SessionStore records the latest token issued for each user. Saving a new
// token replaces the previous one, which revokes it.
type SessionStore interface {
	Save(ctx context.Context, userUID, token string, ttl time.Duration) error
	Exists(ctx context.Context, userUID, token string) (bool, error)
}
