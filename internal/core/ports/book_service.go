package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// BookInput is the DTO passed from the transport layer to BookService.
type BookInput struct {
	ID              int64
	Title           string
	Author          string
	ISBN            string
	PublicationYear int64
	Genre           string
	CopiesAvailable int64
	Status          string
}

// BookService manages the catalogue.
type BookService interface {
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	CreateBook(ctx context.Context, in BookInput) (*domain.Book, error)
	UpdateBook(ctx context.Context, in BookInput) error
	DeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	SearchBooks(ctx context.Context, term string) ([]*domain.Book, error)
}
