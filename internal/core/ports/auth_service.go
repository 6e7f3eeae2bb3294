package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// AuthService registers lenders and authenticates every account.
type AuthService interface {
	Register(ctx context.Context, username, email, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password, role string) (*domain.User, error)
}
