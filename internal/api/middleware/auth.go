package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

const userKey = "current_user"

// Auth resolves the bearer token to a user and stores it in the context.
// Every failure is reported as domain.ErrUnauthenticated.
func Auth(access ports.AccessControl) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrUnauthenticated
			}

			user, err := access.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Auth, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
