package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bookhive/bookhive-api/internal/core/domain"
)

const defaultTokenTTL = time.Hour

// sessionClaims is the wire payload of a session token.
type sessionClaims struct {
	UserUID string `json:"user_uid,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec issues and decodes HS256-signed session tokens.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a JWTCodec.
type CodecOption func(*JWTCodec)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *JWTCodec) { c.now = now }
}

func NewJWTCodec(secret string, ttl time.Duration, opts ...CodecOption) *JWTCodec {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	c := &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL is the lifetime given to every issued token.
func (c *JWTCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for userUID expiring after the codec TTL. Each token
// gets a random jti so that two tokens issued within the same second differ.
func (c *JWTCodec) Issue(userUID string) (string, error) {
	now := c.now()
	claims := sessionClaims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature first and expiry second, then checks that the
// payload names a user.
func (c *JWTCodec) Decode(token string) (*domain.TokenPayload, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.UserUID == "" {
		return nil, domain.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserUID); err != nil {
		return nil, domain.ErrInvalidToken
	}

	payload := &domain.TokenPayload{UserUID: claims.UserUID}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload, nil
}
