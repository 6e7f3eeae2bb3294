package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// UserService exposes account administration.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
