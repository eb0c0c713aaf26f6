package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

const (
	loginThrottlePrefix  = "login:"
	logoutThrottlePrefix = "logout:"

	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

// AuthService implements parent registration, login and the parental logout check.
type AuthService struct {
	users    ports.UserRepository
	creds    ports.CredentialService
	throttle LoginThrottle
	log      zerolog.Logger
}

// NewAuthService builds an AuthService. A nil throttle disables attempt limiting.
func NewAuthService(users ports.UserRepository, creds ports.CredentialService, throttle LoginThrottle, log zerolog.Logger) *AuthService {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	return &AuthService{users: users, creds: creds, throttle: throttle, log: log}
}

func (s *AuthService) RegisterParent(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := createUser(ctx, s.users, s.creds, username, password, domain.RoleParent, nil)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("parent registered")
	return user, nil
}

// Login checks the credentials and returns a signed access token. Unknown
// usernames and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	key := loginThrottlePrefix + username
	if err := s.checkThrottle(ctx, key); err != nil {
		return "", err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("login: %w", err)
		}
		s.recordFailure(ctx, key)
		return "", domain.ErrInvalidCredentials
	}

	if !s.creds.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, key)
		return "", domain.ErrInvalidCredentials
	}
	s.resetThrottle(ctx, key)

	token, err := s.creds.IssueToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("access token issued")
	return token, nil
}

// VerifyParentForLogout lets a device signed in as a child prove knowledge of
// the parent's password. It is deliberately unauthenticated.
func (s *AuthService) VerifyParentForLogout(ctx context.Context, childUsername, parentPassword string) (bool, error) {
	child, err := s.users.FindByUsername(ctx, domain.NormalizeUsername(childUsername))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrChildNotFound
		}
		return false, fmt.Errorf("verify parent: %w", err)
	}
	if child.ParentID == nil || *child.ParentID == "" {
		return false, domain.ErrChildNotFound
	}

	key := logoutThrottlePrefix + child.Username
	if err := s.checkThrottle(ctx, key); err != nil {
		return false, err
	}

	parent, err := s.users.FindByID(ctx, *child.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrParentNotFound
		}
		return false, fmt.Errorf("verify parent: %w", err)
	}

	if !s.creds.Verify(parentPassword, parent.PasswordHash) {
		s.recordFailure(ctx, key)
		s.log.Warn().Str("child_id", child.ID).Msg("parent verification failed")
		return false, domain.ErrInvalidCredentials
	}
	s.resetThrottle(ctx, key)

	return true, nil
}

func (s *AuthService) checkThrottle(ctx context.Context, key string) error {
	blocked, err := s.throttle.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("throttle check failed, continuing")
		return nil
	}
	if blocked {
		return domain.ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if err := s.throttle.RecordFailure(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to record failed attempt")
	}
}

func (s *AuthService) resetThrottle(ctx context.Context, key string) {
	if err := s.throttle.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset attempt counter")
	}
}

// createUser enforces global username uniqueness across both roles, then
// stores the account with a hashed password.
func createUser(ctx context.Context, users ports.UserRepository, creds ports.CredentialService, username, password, role string, parentID *string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" || len(password) > maxPasswordBytes {
		return nil, domain.ErrInvalidInput
	}

	if _, err := users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := creds.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	created, err := users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		ParentID:     parentID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}
