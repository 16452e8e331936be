package domain

import "errors"

// Auth errors. Messages are returned to clients verbatim.
var (
	ErrUserExists     = errors.New("User already exists.")
	ErrWrongLoginData = errors.New("Wrong username/email or password.")
	ErrWrongSession   = errors.New("Current session is inactive or has been terminated.")
	ErrTokenExpired   = errors.New("Token is expired.")
	ErrInvalidToken   = errors.New("Token is invalid.")
	ErrUserNotFound   = errors.New("Current user not found.")
)

var ErrForbidden = errors.New("You have not permission to perform this action.")

// IsAuthError reports whether err is one of the errors that invalidate a
// request's credentials.
func IsAuthError(err error) bool {
	switch {
	case errors.Is(err, ErrWrongSession),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrUserNotFound):
		return true
	}
	return false
}
