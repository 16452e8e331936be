package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookhive/bookhive-api/internal/core/domain"
)

// RequireSuperuser must run after Auth.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*domain.User)
			if !ok || user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
			}
			if !user.IsSuperuser {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
