package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const bookColumns = `id, title, author, isbn, publication_year, genre, copies_available, status`

// BookRepository implements ports.BookRepository on the books table.
type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) ports.BookRepository {
	return &BookRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (*domain.Book, error) {
	var b domain.Book
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear, &b.Genre, &b.CopiesAvailable, &b.Status); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO books (title, author, isbn, publication_year, genre, copies_available, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.Title, book.Author, book.ISBN, book.PublicationYear, book.Genre, book.CopiesAvailable, book.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return res.LastInsertId()
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	return book, nil
}

func (r *BookRepository) Update(ctx context.Context, book *domain.Book) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books
		 SET title = ?, author = ?, isbn = ?, publication_year = ?, genre = ?, copies_available = ?, status = ?
		 WHERE id = ?`,
		book.Title, book.Author, book.ISBN, book.PublicationYear, book.Genre, book.CopiesAvailable, book.Status, book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return affectedOrErr(res, domain.ErrBookNotFound)
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return affectedOrErr(res, domain.ErrBookNotFound)
}

func (r *BookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

// Search matches term anywhere in title, author or isbn. LIKE wildcards in
// term are not escaped.
func (r *BookRepository) Search(ctx context.Context, term string) ([]*domain.Book, error) {
	pattern := "%" + term + "%"
	return r.query(ctx,
		`SELECT `+bookColumns+` FROM books
		 WHERE title LIKE ? OR author LIKE ? OR isbn LIKE ?
		 ORDER BY id`,
		pattern, pattern, pattern,
	)
}

func (r *BookRepository) TakeCopy(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET copies_available = copies_available - 1 WHERE id = ? AND copies_available > 0`, id,
	)
	if err != nil {
		return fmt.Errorf("take copy: %w", err)
	}
	return affectedOrErr(res, domain.ErrNoCopies)
}

func (r *BookRepository) ReturnCopy(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET copies_available = copies_available + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("return copy: %w", err)
	}
	return affectedOrErr(res, domain.ErrBookNotFound)
}

func (r *BookRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// affectedOrErr returns none when the statement touched no row.
func affectedOrErr(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}
