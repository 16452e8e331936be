package ports

import (
	"context"

	"github.com/bookhive/bookhive-api/internal/core/domain"
)

// UserRepository is the persistence boundary for user records.
type UserRepository interface {
	// Create stores a new user, assigning its ID and timestamps. A username or
	// email that is already taken yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByLogin looks a user up by whichever of username/email is non-empty.
	// When both are given, both must match.
	FindByLogin(ctx context.Context, username, email string) (*domain.User, error)
	FindByUID(ctx context.Context, uid string) (*domain.User, error)
}
