package ports

import (
	"context"
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
)

// BorrowRepository defines persistence for borrow records.
type BorrowRepository interface {
	Create(ctx context.Context, rec *domain.BorrowRecord) (int64, error)
	// FindOpen returns domain.ErrRecordNotFound when the record does not exist
	// or has already been returned.
	FindOpen(ctx context.Context, id int64) (*domain.BorrowRecord, error)
	// MarkReturned sets return_date only while it is still NULL and returns
	// domain.ErrRecordNotFound otherwise.
	MarkReturned(ctx context.Context, id int64, at time.Time) error

	ListOpenByUser(ctx context.Context, userID int64) ([]domain.LoanView, error)
	ListOverdueByUser(ctx context.Context, userID int64, now time.Time) ([]domain.LoanView, error)
	ListOpen(ctx context.Context) ([]domain.LedgerView, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.LedgerView, error)
}
