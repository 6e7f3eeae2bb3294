package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// BorrowService handles circulation: lending, returning and loan listings.
type BorrowService interface {
	Borrow(ctx context.Context, userID, bookID int64) (*domain.BorrowRecord, error)
	Return(ctx context.Context, recordID int64) error
	ActiveLoans(ctx context.Context, userID int64) ([]domain.LoanView, error)
	OverdueLoans(ctx context.Context, userID int64) ([]domain.LoanView, error)
	AllActiveLoans(ctx context.Context) ([]domain.LedgerView, error)
	AllOverdueLoans(ctx context.Context) ([]domain.LedgerView, error)
}
