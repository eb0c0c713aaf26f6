package ports

import (
	"context"

	"github.com/kidguard/parental-api/internal/core/domain"
)

// ClearResult is returned by SearchService.ClearSearches.
type ClearResult struct {
	Child        *domain.User
	DeletedCount int
}

// SearchService logs blocked searches and exposes them to the owning parent.
type SearchService interface {
	LogSearch(ctx context.Context, childUsername, query string) (*domain.BlockedSearch, error)
	// ListSearches returns the child's searches, most recent first.
	ListSearches(ctx context.Context, parent *domain.User, childID string) ([]*domain.BlockedSearch, error)
	ClearSearches(ctx context.Context, parent *domain.User, childID string) (*ClearResult, error)
}
