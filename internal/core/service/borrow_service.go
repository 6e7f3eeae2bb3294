package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// BorrowService moves copies between the shelf and lenders. Each operation is
// two independent store statements; there is no transaction spanning them.
type BorrowService struct {
	books   ports.BookRepository
	borrows ports.BorrowRepository
	cache   ports.BookCache
	ledger  ports.LedgerPublisher
	now     func() time.Time
	log     zerolog.Logger
}

// BorrowOption customises a BorrowService.
type BorrowOption func(*BorrowService)

// WithClock overrides the time source used for borrow, return and overdue
// calculations.
func WithClock(now func() time.Time) BorrowOption {
	return func(s *BorrowService) { s.now = now }
}

// WithBookCache invalidates cached books whenever their copy count changes.
func WithBookCache(cache ports.BookCache) BorrowOption {
	return func(s *BorrowService) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLedger publishes an audit event after every completed borrow or return.
func WithLedger(ledger ports.LedgerPublisher) BorrowOption {
	return func(s *BorrowService) {
		if ledger != nil {
			s.ledger = ledger
		}
	}
}

func NewBorrowService(books ports.BookRepository, borrows ports.BorrowRepository, log zerolog.Logger, opts ...BorrowOption) *BorrowService {
	s := &BorrowService{
		books:   books,
		borrows: borrows,
		cache:   noopBookCache{},
		ledger:  noopLedger{},
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Borrow takes one copy of bookID and opens a record due LoanPeriod later.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID int64) (*domain.BorrowRecord, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.CopiesAvailable <= 0 {
		return nil, domain.ErrNoCopies
	}

	// Guarded decrement: a concurrent borrow may have taken the last copy.
	if err := s.books.TakeCopy(ctx, bookID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, bookID)

	borrowedAt := s.clock()
	rec := &domain.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowedAt,
		DueDate:    domain.DueDateFor(borrowedAt),
	}
	id, err := s.borrows.Create(ctx, rec)
	if err != nil {
		// No record means no loan: put the copy back.
		if rerr := s.books.ReturnCopy(ctx, bookID); rerr != nil {
			s.log.Error().Err(rerr).Int64("book_id", bookID).Int64("user_id", userID).
				Msg("borrow record was not written and the copy could not be restored")
		} else {
			s.log.Warn().Err(err).Int64("book_id", bookID).Int64("user_id", userID).
				Msg("borrow record was not written, copy restored")
		}
		s.invalidate(ctx, bookID)
		return nil, err
	}
	rec.ID = id

	s.ledger.Publish(domain.LedgerEvent{
		Action:     domain.ActionBorrow,
		RecordID:   id,
		UserID:     userID,
		BookID:     bookID,
		OccurredAt: borrowedAt,
	})

	s.log.Info().Int64("record_id", id).Int64("book_id", bookID).Int64("user_id", userID).Msg("book borrowed")
	return rec, nil
}

// Return closes an open record and puts its copy back on the shelf.
func (s *BorrowService) Return(ctx context.Context, recordID int64) error {
	rec, err := s.borrows.FindOpen(ctx, recordID)
	if err != nil {
		return err
	}

	returnedAt := s.clock()
	if err := s.borrows.MarkReturned(ctx, recordID, returnedAt); err != nil {
		return err
	}

	if err := s.books.ReturnCopy(ctx, rec.BookID); err != nil {
		s.log.Error().Err(err).Int64("record_id", recordID).Int64("book_id", rec.BookID).
			Msg("record closed but copy was not returned to the shelf")
		return fmt.Errorf("restock book: %w", err)
	}
	s.invalidate(ctx, rec.BookID)

	s.ledger.Publish(domain.LedgerEvent{
		Action:     domain.ActionReturn,
		RecordID:   recordID,
		UserID:     rec.UserID,
		BookID:     rec.BookID,
		OccurredAt: returnedAt,
	})

	s.log.Info().Int64("record_id", recordID).Int64("book_id", rec.BookID).Msg("book returned")
	return nil
}

func (s *BorrowService) ActiveLoans(ctx context.Context, userID int64) ([]domain.LoanView, error) {
	return s.borrows.ListOpenByUser(ctx, userID)
}

func (s *BorrowService) OverdueLoans(ctx context.Context, userID int64) ([]domain.LoanView, error) {
	return s.borrows.ListOverdueByUser(ctx, userID, s.clock())
}

func (s *BorrowService) AllActiveLoans(ctx context.Context) ([]domain.LedgerView, error) {
	return s.borrows.ListOpen(ctx)
}

func (s *BorrowService) AllOverdueLoans(ctx context.Context) ([]domain.LedgerView, error) {
	return s.borrows.ListOverdue(ctx, s.clock())
}

// clock returns the current time in UTC at the stored second precision.
func (s *BorrowService) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *BorrowService) invalidate(ctx context.Context, bookID int64) {
	if err := s.cache.Invalidate(ctx, bookID); err != nil {
		s.log.Warn().Err(err).Int64("book_id", bookID).Msg("book cache invalidation failed")
	}
}

type noopLedger struct{}

func (noopLedger) Publish(domain.LedgerEvent) {}
