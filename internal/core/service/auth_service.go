package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookhive/bookhive-api/internal/core/domain"
	"github.com/bookhive/bookhive-api/internal/core/ports"
)

// dummyPassword is hashed once so that logins for unknown users still pay
// for a bcrypt comparison.
const dummyPassword = "bookhive-dummy-password"

// AuthService implements registration, login and session authentication.
// A login replaces the user's stored session token, which revokes every
// token issued before it.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	hasher     ports.PasswordHasher
	tokens     ports.TokenCodec
	sessionTTL time.Duration
	dummyHash  string
	logger     zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenCodec,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		dummyHash:  dummyHash,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsActivated:  true,
		IsVerified:   true,
		IsSuperuser:  false,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrUserExists) {
			s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Str("user_uid", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (string, error) {
	if input.Username == "" && input.Email == "" {
		return "", domain.ErrWrongLoginData
	}

	user, err := s.users.FindByLogin(ctx, input.Username, input.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.hasher.Verify(input.Password, s.dummyHash)
		s.logger.Info().Str("username", input.Username).Str("email", input.Email).Msg("login rejected")
		return "", domain.ErrWrongLoginData
	case err != nil:
		return "", err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.logger.Info().Str("username", input.Username).Str("email", input.Email).Msg("login rejected")
		return "", domain.ErrWrongLoginData
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.sessions.Save(ctx, user.ID, token, s.sessionTTL); err != nil {
		s.logger.Error().Err(err).Str("user_uid", user.ID).Msg("failed to store session")
		return "", err
	}

	s.logger.Info().Str("user_uid", user.ID).Msg("user logged in")
	return token, nil
}

// Authenticate checks the token signature and expiry, then requires it to be
// the user's current session token and the user to still exist.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	payload, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	ok, err := s.sessions.Exists(ctx, payload.UserUID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Debug().Str("user_uid", payload.UserUID).Msg("session superseded or expired")
		return nil, domain.ErrWrongSession
	}

	user, err := s.users.FindByUID(ctx, payload.UserUID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn().Str("user_uid", payload.UserUID).Msg("session owner no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	return s.users.FindByUID(ctx, uid)
}
