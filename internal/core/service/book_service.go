package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

type BookService struct {
	repo  ports.BookRepository
	cache ports.BookCache
	log   zerolog.Logger
}

// NewBookService returns a BookService. cache may be nil, in which case every
// lookup goes to the repository.
func NewBookService(repo ports.BookRepository, cache ports.BookCache, log zerolog.Logger) *BookService {
	if cache == nil {
		cache = noopBookCache{}
	}
	return &BookService{repo: repo, cache: cache, log: log}
}

// GetBook reads through the cache. Cache failures are logged and bypassed.
func (s *BookService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Int64("book_id", id).Msg("book cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A borrow that invalidates between FindByID and Set leaves this entry
	// stale until the TTL expires.
	if err := s.cache.Set(ctx, book); err != nil {
		s.log.Warn().Err(err).Int64("book_id", id).Msg("book cache write failed")
	}
	return book, nil
}

func (s *BookService) CreateBook(ctx context.Context, in ports.BookInput) (*domain.Book, error) {
	book := bookFromInput(in)
	if book.Status == "" {
		book.Status = domain.BookStatusAvailable
	}

	id, err := s.repo.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	book.ID = id

	s.log.Info().Int64("book_id", id).Str("isbn", book.ISBN).Msg("book added")
	return book, nil
}

func (s *BookService) UpdateBook(ctx context.Context, in ports.BookInput) error {
	book := bookFromInput(in)
	if book.Status == "" {
		book.Status = domain.BookStatusAvailable
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return err
	}
	s.invalidate(ctx, book.ID)

	s.log.Info().Int64("book_id", book.ID).Msg("book updated")
	return nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.log.Info().Int64("book_id", id).Msg("book deleted")
	return nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.repo.List(ctx)
}

func (s *BookService) SearchBooks(ctx context.Context, term string) ([]*domain.Book, error) {
	return s.repo.Search(ctx, term)
}

func (s *BookService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("book_id", id).Msg("book cache invalidation failed")
	}
}

func bookFromInput(in ports.BookInput) *domain.Book {
	return &domain.Book{
		ID:              in.ID,
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		ISBN:            strings.TrimSpace(in.ISBN),
		PublicationYear: in.PublicationYear,
		Genre:           strings.TrimSpace(in.Genre),
		CopiesAvailable: in.CopiesAvailable,
		Status:          strings.TrimSpace(in.Status),
	}
}

type noopBookCache struct{}

func (noopBookCache) Get(context.Context, int64) (*domain.Book, error) { return nil, nil }
func (noopBookCache) Set(context.Context, *domain.Book) error          { return nil }
func (noopBookCache) Invalidate(context.Context, int64) error          { return nil }
