package ports

import (
	"context"

	"github.com/kidguard/parental-api/internal/core/domain"
)

type AuthService interface {
	RegisterParent(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	VerifyParentForLogout(ctx context.Context, childUsername, parentPassword string) (bool, error)
}
