package domain

import "time"

// User models a registered account. Once loaded into the auth flow it is
// treated as a read-only snapshot; the user repository owns mutation.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActivated  bool
	IsVerified   bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPayload is the decoded content of a session token.
type TokenPayload struct {
	UserUID   string
	ExpiresAt time.Time
}
