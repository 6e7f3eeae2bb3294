package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// BookCache is a read-through cache in front of BookRepository.FindByID.
// Get returns (nil, nil) on a miss.
type BookCache interface {
	Get(ctx context.Context, id int64) (*domain.Book, error)
	Set(ctx context.Context, book *domain.Book) error
	Invalidate(ctx context.Context, id int64) error
}
