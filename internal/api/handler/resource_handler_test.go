package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

type stubBookService struct {
	created []ports.BookInput
	updated []ports.BookInput
	deleted []int64
	books   map[int64]*domain.Book
	terms   []string
	err     error
}

func (s *stubBookService) GetBook(_ context.Context, id int64) (*domain.Book, error) {
	if b, ok := s.books[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBookNotFound
}

func (s *stubBookService) CreateBook(_ context.Context, in ports.BookInput) (*domain.Book, error) {
	s.created = append(s.created, in)
	return &domain.Book{ID: 1}, s.err
}

func (s *stubBookService) UpdateBook(_ context.Context, in ports.BookInput) error {
	s.updated = append(s.updated, in)
	return s.err
}

func (s *stubBookService) DeleteBook(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubBookService) ListBooks(context.Context) ([]*domain.Book, error) { return nil, s.err }

func (s *stubBookService) SearchBooks(_ context.Context, term string) ([]*domain.Book, error) {
	s.terms = append(s.terms, term)
	return []*domain.Book{{ID: 3, Title: "Dune"}}, s.err
}

type stubBorrowService struct {
	borrowed [][2]int64
	returned []int64
	err      error
}

func (s *stubBorrowService) Borrow(_ context.Context, userID, bookID int64) (*domain.BorrowRecord, error) {
	s.borrowed = append(s.borrowed, [2]int64{userID, bookID})
	return &domain.BorrowRecord{ID: 1}, s.err
}

func (s *stubBorrowService) Return(_ context.Context, recordID int64) error {
	s.returned = append(s.returned, recordID)
	return s.err
}

func (s *stubBorrowService) ActiveLoans(_ context.Context, userID int64) ([]domain.LoanView, error) {
	return []domain.LoanView{{ID: userID, Title: "Dune"}}, s.err
}

func (s *stubBorrowService) OverdueLoans(context.Context, int64) ([]domain.LoanView, error) {
	return nil, s.err
}

func (s *stubBorrowService) AllActiveLoans(context.Context) ([]domain.LedgerView, error) {
	return []domain.LedgerView{{ID: 1, Username: "alice"}}, s.err
}

func (s *stubBorrowService) AllOverdueLoans(context.Context) ([]domain.LedgerView, error) {
	return nil, s.err
}

type stubUserService struct {
	deleted []int64
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) {
	return []*domain.User{{ID: 1, Username: "admin", Email: "admin@example.com", Secret: "deadbeef", Role: "admin"}}, nil
}

func (s *stubUserService) DeleteUser(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func expectValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != msg {
		t.Fatalf("expected validation error %q, got %v", msg, err)
	}
}

const validBook = `{"title":" Dune ","author":"Herbert","isbn":"9780441013593","publication_year":1965,"genre":"sf"}`

func TestBookHandler_Create_DefaultsAndTrims(t *testing.T) {
	svc := &stubBookService{}
	h := NewBookHandler(svc, NewValidator(), zerolog.Nop())

	resp, err := h.Create(context.Background(), newRequest("POST", "/api/book", wire.ContentTypeJSON, validBook))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if string(resp.Body) != `{"status":"book added"}` {
		t.Fatalf("unexpected body %s", resp.Body)
	}
	in := svc.created[0]
	if in.Title != "Dune" || in.CopiesAvailable != domain.DefaultCopies || in.PublicationYear != 1965 {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestBookHandler_Create_InvalidFields(t *testing.T) {
	svc := &stubBookService{}
	h := NewBookHandler(svc, NewValidator(), zerolog.Nop())

	for _, body := range []string{
		`{"title":"","author":"a","isbn":"1","publication_year":1,"genre":"g"}`,
		`{"title":"t","author":"a","isbn":"1","genre":"g"}`,
		`{"title":"t","author":"a","isbn":"1","publication_year":0,"genre":"g"}`,
		`{"title":"t","author":"a","isbn":1,"publication_year":1,"genre":"g"}`,
		`{"title":"t","author":"a","isbn":"1","publication_year":"1999","genre":"g"}`,
		`{"title":"t","author":"a","isbn":"1","publication_year":1,"genre":"   "}`,
	} {
		_, err := h.Create(context.Background(), newRequest("POST", "/api/book", wire.ContentTypeJSON, body))
		expectValidation(t, err, "Missing or invalid book fields")
	}
	if len(svc.created) != 0 {
		t.Fatalf("service called for invalid payloads")
	}
}

func TestBookHandler_Get(t *testing.T) {
	svc := &stubBookService{books: map[int64]*domain.Book{7: {ID: 7, Title: "Emma"}}}
	h := NewBookHandler(svc, NewValidator(), zerolog.Nop())

	resp, err := h.Get(context.Background(), newRequest("GET", "/api/book?id=7", "", ""))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var b domain.Book
	if err := json.Unmarshal(resp.Body, &b); err != nil || b.Title != "Emma" {
		t.Fatalf("unexpected book %s", resp.Body)
	}

	if _, err := h.Get(context.Background(), newRequest("GET", "/api/book?id=999", "", "")); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
	for _, target := range []string{"/api/book", "/api/book?id=abc", "/api/book?bookid=7"} {
		_, err := h.Get(context.Background(), newRequest("GET", target, "", ""))
		expectValidation(t, err, "Missing or invalid book id")
	}
}

func TestBookHandler_UpdateAndDelete_RequirePositiveID(t *testing.T) {
	svc := &stubBookService{}
	h := NewBookHandler(svc, NewValidator(), zerolog.Nop())

	for _, body := range []string{validBook, `{"id":0,"title":"t"}`, `{"id":"3"}`} {
		_, err := h.Update(context.Background(), newRequest("PUT", "/api/book", wire.ContentTypeJSON, body))
		expectValidation(t, err, "Invalid book id")
		_, err = h.Delete(context.Background(), newRequest("DELETE", "/api/book", wire.ContentTypeJSON, body))
		expectValidation(t, err, "Invalid book id")
	}

	update := `{"id":4,"title":"t","author":"a","isbn":"1","publication_year":2001,"genre":"g","copies_available":3}`
	if _, err := h.Update(context.Background(), newRequest("PUT", "/api/book", wire.ContentTypeJSON, update)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if in := svc.updated[0]; in.ID != 4 || in.CopiesAvailable != 3 || in.Status != domain.BookStatusAvailable {
		t.Fatalf("unexpected update input %+v", in)
	}
	resp, err := h.Delete(context.Background(), newRequest("DELETE", "/api/book", wire.ContentTypeJSON, `{"id":4}`))
	if err != nil || string(resp.Body) != `{"status":"book deleted"}` || svc.deleted[0] != 4 {
		t.Fatalf("Delete: %v %v", resp, err)
	}
}

func TestBorrowHandler_Borrow(t *testing.T) {
	svc := &stubBorrowService{}
	h := NewBorrowHandler(svc)

	_, err := h.Borrow(context.Background(), newRequest("POST", "/api/borrow", wire.ContentTypeJSON, `{"book_id":2}`))
	expectValidation(t, err, "Missing user_id")
	_, err = h.Borrow(context.Background(), newRequest("POST", "/api/borrow", wire.ContentTypeJSON, `{"user_id":1,"book_id":"2"}`))
	expectValidation(t, err, "Missing book_id")

	resp, err := h.Borrow(context.Background(), newRequest("POST", "/api/borrow", wire.ContentTypeJSON, `{"user_id":1,"book_id":2}`))
	if err != nil || string(resp.Body) != `{"status":"borrowed"}` {
		t.Fatalf("Borrow: %v %v", resp, err)
	}
	if svc.borrowed[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected args %v", svc.borrowed)
	}

	svc.err = domain.ErrNoCopies
	if _, err := h.Borrow(context.Background(), newRequest("POST", "/api/borrow", wire.ContentTypeJSON, `{"user_id":1,"book_id":2}`)); !errors.Is(err, domain.ErrNoCopies) {
		t.Fatalf("expected ErrNoCopies, got %v", err)
	}
}

func TestBorrowHandler_Return(t *testing.T) {
	svc := &stubBorrowService{}
	h := NewBorrowHandler(svc)

	_, err := h.Return(context.Background(), newRequest("PUT", "/api/borrow", wire.ContentTypeJSON, `{}`))
	expectValidation(t, err, "Missing record_id")

	resp, err := h.Return(context.Background(), newRequest("PUT", "/api/borrow", wire.ContentTypeJSON, `{"record_id":9}`))
	if err != nil || string(resp.Body) != `{"status":"returned"}` || svc.returned[0] != 9 {
		t.Fatalf("Return: %v %v", resp, err)
	}
}

func TestBorrowHandler_Listings(t *testing.T) {
	h := NewBorrowHandler(&stubBorrowService{})

	resp, err := h.Active(context.Background(), newRequest("GET", "/api/borrow?user_id=5", "", ""))
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	var loans []domain.LoanView
	if err := json.Unmarshal(resp.Body, &loans); err != nil || len(loans) != 1 || loans[0].ID != 5 {
		t.Fatalf("unexpected loans %s", resp.Body)
	}

	resp, err = h.Overdue(context.Background(), newRequest("GET", "/api/borrow/overdue?user_id=5", "", ""))
	if err != nil || string(resp.Body) != "[]" {
		t.Fatalf("expected empty array, got %s (%v)", resp.Body, err)
	}

	_, err = h.Active(context.Background(), newRequest("GET", "/api/borrow?user_id=x", "", ""))
	expectValidation(t, err, "Invalid or missing user_id")
	_, err = h.Overdue(context.Background(), newRequest("GET", "/api/borrow/overdue", "", ""))
	expectValidation(t, err, "Invalid or missing user_id")
}

func TestAdminHandler(t *testing.T) {
	books := &stubBookService{}
	users := &stubUserService{}
	h := NewAdminHandler(books, users, &stubBorrowService{})
	ctx := context.Background()

	resp, err := h.Books(ctx, newRequest("GET", "/api/admin", "", ""))
	if err != nil || string(resp.Body) != "[]" {
		t.Fatalf("Books: %s %v", resp.Body, err)
	}

	if _, err := h.SearchBooks(ctx, newRequest("GET", "/api/admin/books?search=dune%20x", "", "")); err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if _, err := h.SearchBooks(ctx, newRequest("GET", "/api/admin/books", "", "")); err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if books.terms[0] != "dune%20x" || books.terms[1] != "" {
		t.Fatalf("search term must be passed raw, got %q", books.terms)
	}

	resp, err = h.Users(ctx, newRequest("GET", "/api/admin/users", "", ""))
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	var listed []map[string]any
	if err := json.Unmarshal(resp.Body, &listed); err != nil || len(listed) != 1 {
		t.Fatalf("unexpected users %s", resp.Body)
	}
	if _, leaked := listed[0]["secret"]; leaked || len(listed[0]) != 4 {
		t.Fatalf("user listing must be id, username, email, role only: %v", listed[0])
	}

	_, err = h.DeleteUser(ctx, newRequest("DELETE", "/api/admin/users", "", ""))
	expectValidation(t, err, "Invalid or missing user ID")
	resp, err = h.DeleteUser(ctx, newRequest("DELETE", "/api/admin/users?id=12", "", ""))
	if err != nil || string(resp.Body) != `{"status":"deleted"}` || users.deleted[0] != 12 {
		t.Fatalf("DeleteUser: %v %v", resp, err)
	}

	resp, err = h.Borrowed(ctx, newRequest("GET", "/api/admin/borrowed", "", ""))
	if err != nil {
		t.Fatalf("Borrowed: %v", err)
	}
	var ledger []domain.LedgerView
	if err := json.Unmarshal(resp.Body, &ledger); err != nil || ledger[0].Username != "alice" {
		t.Fatalf("unexpected ledger %s", resp.Body)
	}
	resp, err = h.Overdue(ctx, newRequest("GET", "/api/admin/overdue", "", ""))
	if err != nil || string(resp.Body) != "[]" {
		t.Fatalf("Overdue: %s %v", resp.Body, err)
	}
}
