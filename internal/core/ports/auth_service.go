package ports

import (
	"context"

	"github.com/bookhive/bookhive-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput identifies a user by username or email (at least one).
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Authenticator resolves a bearer token to the user that owns the session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type AuthService interface {
	Authenticator
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (string, error)
	GetUser(ctx context.Context, uid string) (*domain.User, error)
}
