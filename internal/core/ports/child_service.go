package ports

import (
	"context"

	"github.com/kidguard/parental-api/internal/core/domain"
)

// ChildService manages the children owned by an authenticated parent.
type ChildService interface {
	CreateChild(ctx context.Context, parent *domain.User, username, password string) (*domain.User, error)
	ListChildren(ctx context.Context, parent *domain.User) ([]*domain.User, error)
	// DeleteChild removes the child and its searches, returning the deleted child.
	DeleteChild(ctx context.Context, parent *domain.User, childID string) (*domain.User, error)
}
