package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/core/domain"
)

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userKey, &domain.User{ID: "p1", Role: domain.RoleParent})

	called := false
	handler := RequireRole(newStubAccess(), domain.RoleParent)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
	}{
		{"child", &domain.User{ID: "c1", Role: domain.RoleChild}},
		{"no user", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.user != nil {
				c.Set(userKey, tt.user)
			}

			handler := RequireRole(newStubAccess(), domain.RoleParent)(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			if err := handler(c); err != domain.ErrForbidden {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}
