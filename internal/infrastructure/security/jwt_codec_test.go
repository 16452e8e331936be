package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookhive/bookhive-api/internal/core/domain"
)

const testUID = "8b0c8f5e-6d7a-4a43-9a57-2f0f3c1d9e11"

func TestJWTCodec_IssueAndDecode(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)

	token, err := c.Issue(testUID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	payload, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if payload.UserUID != testUID {
		t.Fatalf("expected uid %s, got %s", testUID, payload.UserUID)
	}
	if time.Until(payload.ExpiresAt) <= 0 || time.Until(payload.ExpiresAt) > time.Hour {
		t.Fatalf("unexpected expiry: %v", payload.ExpiresAt)
	}
}

func TestJWTCodec_TokensAreUniquePerIssue(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewJWTCodec("secret", time.Hour, WithClock(func() time.Time { return fixed }))

	a, _ := c.Issue(testUID)
	b, _ := c.Issue(testUID)
	if a == b {
		t.Fatalf("expected distinct tokens for issues at the same instant")
	}
}

func TestJWTCodec_Expired(t *testing.T) {
	now := time.Now()
	c := NewJWTCodec("secret", time.Hour, WithClock(func() time.Time { return now }))

	token, err := c.Issue(testUID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := c.Decode(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTCodec_TamperedSignature(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)
	token, _ := c.Issue(testUID)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := c.Decode(tampered); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTCodec_ExpiredWithBadSignatureIsInvalid(t *testing.T) {
	issued := time.Now()
	token, _ := NewJWTCodec("secret", time.Hour, WithClock(func() time.Time { return issued })).Issue(testUID)

	later := NewJWTCodec("other-secret", time.Hour, WithClock(func() time.Time { return issued.Add(2 * time.Hour) }))
	if _, err := later.Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	token, _ := NewJWTCodec("right-secret", time.Hour).Issue(testUID)

	if _, err := NewJWTCodec("wrong-secret", time.Hour).Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTCodec_Malformed(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "not.a.jwt"} {
		if _, err := c.Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"user_uid": testUID,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := NewJWTCodec("secret", time.Hour).Decode(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTCodec_MissingUserUID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := NewJWTCodec("secret", time.Hour).Decode(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTCodec_MissingExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_uid": testUID,
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	payload, err := NewJWTCodec("secret", time.Hour).Decode(signed)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got payload=%v err=%v", payload, err)
	}
}

func TestJWTCodec_NonUUIDUserUID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_uid": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte("secret"))

	if _, err := NewJWTCodec("secret", time.Hour).Decode(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewJWTCodec_DefaultTTL(t *testing.T) {
	if got := NewJWTCodec("secret", 0).TTL(); got != defaultTokenTTL {
		t.Fatalf("expected default ttl %v, got %v", defaultTokenTTL, got)
	}
}
