package ports

import (
	"context"

	"github.com/kidguard/parental-api/internal/core/domain"
)

// UserRepository defines persistence operations for parent and child accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindChildren(ctx context.Context, parentID string) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
