package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/core/ports"
)

// RequireRole lets the request through only when the authenticated user holds
// role. It must run after Auth.
func RequireRole(access ports.AccessControl, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := access.RequireRole(CurrentUser(c), role); err != nil {
				return err
			}
			return next(c)
		}
	}
}
