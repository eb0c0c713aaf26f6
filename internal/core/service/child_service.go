package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

type ChildService struct {
	users    ports.UserRepository
	searches ports.SearchRepository
	creds    ports.CredentialService
	access   ports.AccessControl
	log      zerolog.Logger
}

func NewChildService(
	users ports.UserRepository,
	searches ports.SearchRepository,
	creds ports.CredentialService,
	access ports.AccessControl,
	log zerolog.Logger,
) *ChildService {
	return &ChildService{
		users:    users,
		searches: searches,
		creds:    creds,
		access:   access,
		log:      log,
	}
}

func (s *ChildService) CreateChild(ctx context.Context, parent *domain.User, username, password string) (*domain.User, error) {
	if _, err := s.access.RequireRole(parent, domain.RoleParent); err != nil {
		return nil, err
	}

	parentID := parent.ID
	child, err := createUser(ctx, s.users, s.creds, username, password, domain.RoleChild, &parentID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("parent_id", parent.ID).Str("child_id", child.ID).Msg("child created")
	return child, nil
}

// ListChildren returns the parent's children ordered by username.
func (s *ChildService) ListChildren(ctx context.Context, parent *domain.User) ([]*domain.User, error) {
	if _, err := s.access.RequireRole(parent, domain.RoleParent); err != nil {
		return nil, err
	}

	children, err := s.users.FindChildren(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].Username < children[j].Username
	})
	return children, nil
}

// DeleteChild removes the child's searches first and the account last. The
// steps are not atomic: a failure in between leaves an account with no
// searches, and repeating the call finishes the job.
func (s *ChildService) DeleteChild(ctx context.Context, parent *domain.User, childID string) (*domain.User, error) {
	child, err := s.access.RequireOwnership(ctx, parent, childID)
	if err != nil {
		return nil, err
	}

	deleted, err := deleteSearches(ctx, s.searches, child.ID)
	if err != nil {
		return nil, fmt.Errorf("delete child: %w", err)
	}

	if err := s.users.Delete(ctx, child.ID); err != nil {
		return nil, fmt.Errorf("delete child: %w", err)
	}

	s.log.Info().
		Str("parent_id", parent.ID).
		Str("child_id", child.ID).
		Int("searches_deleted", deleted).
		Msg("child deleted")

	return child, nil
}
