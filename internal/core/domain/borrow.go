package domain

import "time"

// LoanPeriod is the time between borrow_date and due_date.
const LoanPeriod = 14 * 24 * time.Hour

// TimeLayout is the on-disk format for borrow dates. All values are UTC so
// lexical comparison in SQL matches chronological order.
const TimeLayout = time.RFC3339

// BorrowRecord tracks one lending of one copy. ReturnDate is nil while the
// book is still out.
type BorrowRecord struct {
	ID         int64
	UserID     int64
	BookID     int64
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

// LoanView is an active borrow joined with its book, as listed to a lender.
type LoanView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
}

// LedgerView is an active borrow joined with its book and borrower, as listed
// to the administrator.
type LedgerView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Username   string `json:"username"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
}

// DueDateFor returns the due date for a loan starting at borrowedAt.
func DueDateFor(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(LoanPeriod)
}

// FormatTime renders t in the stored borrow date format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
