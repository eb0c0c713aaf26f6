package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

const (
	fieldSearchQuery = "search_query"
	fieldChildID     = "child_id"
	fieldTimestamp   = "timestamp"
)

type SearchRepository struct {
	store ports.DocumentStore
}

func NewSearchRepository(store ports.DocumentStore) *SearchRepository {
	return &SearchRepository{store: store}
}

func (r *SearchRepository) Create(ctx context.Context, s *domain.BlockedSearch) (*domain.BlockedSearch, error) {
	id, err := r.store.Insert(ctx, ports.CollectionSearches, ports.Document{
		fieldSearchQuery: s.SearchQuery,
		fieldChildID:     s.ChildID,
		fieldTimestamp:   s.Timestamp.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert search: %w", err)
	}

	created := *s
	created.ID = id
	created.Timestamp = s.Timestamp.UTC()
	return &created, nil
}

func (r *SearchRepository) FindByChild(ctx context.Context, childID string) ([]*domain.BlockedSearch, error) {
	docs, err := r.store.FindAll(ctx, ports.CollectionSearches, fieldChildID, childID)
	if err != nil {
		return nil, fmt.Errorf("find searches: %w", err)
	}

	out := make([]*domain.BlockedSearch, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toSearch(doc))
	}
	return out, nil
}

func (r *SearchRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, ports.CollectionSearches, id); err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	return nil
}

func toSearch(doc ports.Document) *domain.BlockedSearch {
	return &domain.BlockedSearch{
		ID:          doc.ID(),
		SearchQuery: stringField(doc, fieldSearchQuery),
		ChildID:     stringField(doc, fieldChildID),
		Timestamp:   timeField(doc, fieldTimestamp),
	}
}

// timeField accepts a time.Time or an RFC 3339 string. Anything else reads as
// the zero time.
func timeField(doc ports.Document, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
