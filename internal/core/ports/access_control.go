package ports

import (
	"context"

	"github.com/kidguard/parental-api/internal/core/domain"
)

// AccessControl resolves identities and enforces role and ownership rules.
type AccessControl interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	RequireRole(user *domain.User, role string) (*domain.User, error)
	// RequireOwnership loads the child and checks it belongs to parent.
	RequireOwnership(ctx context.Context, parent *domain.User, childID string) (*domain.User, error)
}
