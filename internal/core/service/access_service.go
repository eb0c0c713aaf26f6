package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

// AccessService turns bearer tokens into users and guards per-child data.
type AccessService struct {
	users ports.UserRepository
	creds ports.CredentialService
}

func NewAccessService(users ports.UserRepository, creds ports.CredentialService) *AccessService {
	return &AccessService{users: users, creds: creds}
}

// Authenticate resolves a token to its user. Invalid, expired, and orphaned
// tokens all fail with ErrUnauthenticated.
func (s *AccessService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	username, err := s.creds.ValidateToken(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

func (s *AccessService) RequireRole(user *domain.User, role string) (*domain.User, error) {
	if user == nil || user.Role != role {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// RequireOwnership must run before any read or mutation of a child's data.
func (s *AccessService) RequireOwnership(ctx context.Context, parent *domain.User, childID string) (*domain.User, error) {
	if parent == nil {
		return nil, domain.ErrForbidden
	}

	child, err := s.users.FindByID(ctx, childID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrChildNotFound
		}
		return nil, fmt.Errorf("require ownership: %w", err)
	}

	if !child.OwnedBy(parent) {
		return nil, domain.ErrForbidden
	}
	return child, nil
}
