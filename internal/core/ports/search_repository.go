package ports

import (
	"context"

	"github.com/kidguard/parental-api/internal/core/domain"
)

// SearchRepository defines persistence operations for blocked searches.
type SearchRepository interface {
	Create(ctx context.Context, search *domain.BlockedSearch) (*domain.BlockedSearch, error)
	FindByChild(ctx context.Context, childID string) ([]*domain.BlockedSearch, error)
	Delete(ctx context.Context, id string) error
}
