package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// BookRepository defines persistence operations for the catalogue.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) (int64, error)
	// FindByID returns domain.ErrBookNotFound when no row matches.
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	// Update and Delete return domain.ErrBookNotFound when no row was affected.
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Book, error)
	// Search matches term as a substring of title, author or isbn.
	Search(ctx context.Context, term string) ([]*domain.Book, error)

	// TakeCopy decrements copies_available only while it is positive and
	// returns domain.ErrNoCopies otherwise.
	TakeCopy(ctx context.Context, id int64) error
	// ReturnCopy increments copies_available.
	ReturnCopy(ctx context.Context, id int64) error
}
