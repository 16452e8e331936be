package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookhive/bookhive-api/internal/api/metrics"
	"github.com/bookhive/bookhive-api/internal/core/domain"
	"github.com/bookhive/bookhive-api/internal/core/ports"
)

const bearerPrefix = "Bearer "

// Auth resolves the bearer token to its user and stores it under "user".
func Auth(authenticator ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthenticationsTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "The Authorization header is missing.")
			}

			token, found := strings.CutPrefix(authHeader, bearerPrefix)
			if !found {
				metrics.AuthenticationsTotal.WithLabelValues("malformed_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "The Authorization header must be in the following format: Bearer <token>")
			}

			user, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AuthenticationsTotal.WithLabelValues(authResult(err)).Inc()
				return err
			}

			metrics.AuthenticationsTotal.WithLabelValues("ok").Inc()
			c.Set("user", user)
			return next(c)
		}
	}
}

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrWrongSession):
		return "wrong_session"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	default:
		return "error"
	}
}
