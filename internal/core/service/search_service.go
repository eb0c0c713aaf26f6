package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

type SearchService struct {
	searches ports.SearchRepository
	users    ports.UserRepository
	access   ports.AccessControl
	now      func() time.Time
	log      zerolog.Logger
}

// NewSearchService builds a SearchService. now defaults to time.Now when nil.
func NewSearchService(
	searches ports.SearchRepository,
	users ports.UserRepository,
	access ports.AccessControl,
	now func() time.Time,
	log zerolog.Logger,
) *SearchService {
	if now == nil {
		now = time.Now
	}
	return &SearchService{
		searches: searches,
		users:    users,
		access:   access,
		now:      now,
		log:      log,
	}
}

// LogSearch records a blocked search for the named child. Callers are not
// authenticated: the browser extension reporting searches is not a principal.
func (s *SearchService) LogSearch(ctx context.Context, childUsername, query string) (*domain.BlockedSearch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	child, err := s.users.FindByUsername(ctx, domain.NormalizeUsername(childUsername))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrChildNotFound
		}
		return nil, fmt.Errorf("log search: %w", err)
	}
	if !child.IsChild() {
		return nil, domain.ErrChildNotFound
	}

	created, err := s.searches.Create(ctx, &domain.BlockedSearch{
		SearchQuery: query,
		ChildID:     child.ID,
		Timestamp:   s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("log search: %w", err)
	}

	s.log.Debug().Str("child_id", child.ID).Str("search_id", created.ID).Msg("blocked search logged")
	return created, nil
}

// ListSearches returns the child's searches newest first. Searches without a
// timestamp sort as the oldest.
func (s *SearchService) ListSearches(ctx context.Context, parent *domain.User, childID string) ([]*domain.BlockedSearch, error) {
	child, err := s.access.RequireOwnership(ctx, parent, childID)
	if err != nil {
		return nil, err
	}

	searches, err := s.searches.FindByChild(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}

	sort.SliceStable(searches, func(i, j int) bool {
		return searches[i].Timestamp.After(searches[j].Timestamp)
	})
	return searches, nil
}

func (s *SearchService) ClearSearches(ctx context.Context, parent *domain.User, childID string) (*ports.ClearResult, error) {
	child, err := s.access.RequireOwnership(ctx, parent, childID)
	if err != nil {
		return nil, err
	}

	deleted, err := deleteSearches(ctx, s.searches, child.ID)
	if err != nil {
		return nil, fmt.Errorf("clear searches: %w", err)
	}

	s.log.Info().Str("child_id", child.ID).Int("deleted", deleted).Msg("search history cleared")
	return &ports.ClearResult{Child: child, DeletedCount: deleted}, nil
}

func deleteSearches(ctx context.Context, repo ports.SearchRepository, childID string) (int, error) {
	searches, err := repo.FindByChild(ctx, childID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, search := range searches {
		if err := repo.Delete(ctx, search.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
