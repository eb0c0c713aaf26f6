package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/api/middleware"
	"github.com/kidguard/parental-api/internal/core/domain"
)

// currentUser returns the user resolved by the Auth middleware. A missing user
// means the route was mounted without Auth; treat it as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
