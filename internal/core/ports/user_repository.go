package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// UserRepository defines persistence for account credentials.
type UserRepository interface {
	// Create stores a new user and returns it with its assigned id. A
	// uniqueness violation is returned as-is from the store.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no row matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
