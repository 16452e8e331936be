package ports

import "github.com/bookhive/bookhive-api/internal/core/domain"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenCodec mints and decodes signed session tokens.
type TokenCodec interface {
	Issue(userUID string) (string, error)
	// Decode fails with domain.ErrInvalidToken or domain.ErrTokenExpired.
	Decode(token string) (*domain.TokenPayload, error)
}
