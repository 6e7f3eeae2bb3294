package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// BorrowRepository implements ports.BorrowRepository on borrow_records. Dates
// are stored as RFC 3339 UTC text, so string comparison orders them.
type BorrowRepository struct {
	db *sql.DB
}

func NewBorrowRepository(db *sql.DB) ports.BorrowRepository {
	return &BorrowRepository{db: db}
}

func (r *BorrowRepository) Create(ctx context.Context, rec *domain.BorrowRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO borrow_records (user_id, book_id, borrow_date, due_date) VALUES (?, ?, ?, ?)`,
		rec.UserID, rec.BookID, domain.FormatTime(rec.BorrowDate), domain.FormatTime(rec.DueDate),
	)
	if err != nil {
		return 0, fmt.Errorf("insert borrow record: %w", err)
	}
	return res.LastInsertId()
}

func (r *BorrowRepository) FindOpen(ctx context.Context, id int64) (*domain.BorrowRecord, error) {
	var (
		rec                 domain.BorrowRecord
		borrowDate, dueDate string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, borrow_date, due_date
		 FROM borrow_records WHERE id = ? AND return_date IS NULL`, id,
	).Scan(&rec.ID, &rec.UserID, &rec.BookID, &borrowDate, &dueDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find borrow record: %w", err)
	}

	if rec.BorrowDate, err = time.Parse(domain.TimeLayout, borrowDate); err != nil {
		return nil, fmt.Errorf("parse borrow_date %q: %w", borrowDate, err)
	}
	if rec.DueDate, err = time.Parse(domain.TimeLayout, dueDate); err != nil {
		return nil, fmt.Errorf("parse due_date %q: %w", dueDate, err)
	}
	return &rec, nil
}

func (r *BorrowRepository) MarkReturned(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE borrow_records SET return_date = ? WHERE id = ? AND return_date IS NULL`,
		domain.FormatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("mark returned: %w", err)
	}
	return affectedOrErr(res, domain.ErrRecordNotFound)
}

const loanSelect = `SELECT br.id, b.title, b.author, br.borrow_date, br.due_date
	FROM borrow_records br
	JOIN books b ON br.book_id = b.id
	WHERE br.user_id = ? AND br.return_date IS NULL`

func (r *BorrowRepository) ListOpenByUser(ctx context.Context, userID int64) ([]domain.LoanView, error) {
	return r.loans(ctx, loanSelect+` ORDER BY br.id`, userID)
}

func (r *BorrowRepository) ListOverdueByUser(ctx context.Context, userID int64, now time.Time) ([]domain.LoanView, error) {
	return r.loans(ctx, loanSelect+` AND br.due_date < ? ORDER BY br.id`, userID, domain.FormatTime(now))
}

const ledgerSelect = `SELECT br.id, b.title, b.author, u.username, br.borrow_date, br.due_date
	FROM borrow_records br
	JOIN books b ON br.book_id = b.id
	JOIN users u ON br.user_id = u.id
	WHERE br.return_date IS NULL`

func (r *BorrowRepository) ListOpen(ctx context.Context) ([]domain.LedgerView, error) {
	return r.ledger(ctx, ledgerSelect+` ORDER BY br.id`)
}

func (r *BorrowRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.LedgerView, error) {
	return r.ledger(ctx, ledgerSelect+` AND br.due_date < ? ORDER BY br.id`, domain.FormatTime(now))
}

func (r *BorrowRepository) loans(ctx context.Context, q string, args ...any) ([]domain.LoanView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LoanView, 0)
	for rows.Next() {
		var v domain.LoanView
		if err := rows.Scan(&v.ID, &v.Title, &v.Author, &v.BorrowDate, &v.DueDate); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *BorrowRepository) ledger(ctx context.Context, q string, args ...any) ([]domain.LedgerView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query borrowed books: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LedgerView, 0)
	for rows.Next() {
		var v domain.LedgerView
		if err := rows.Scan(&v.ID, &v.Title, &v.Author, &v.Username, &v.BorrowDate, &v.DueDate); err != nil {
			return nil, fmt.Errorf("scan borrowed book: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
