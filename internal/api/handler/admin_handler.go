package handler

import (
	"context"

	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// AdminHandler serves the administrator's catalogue, account and loan views.
type AdminHandler struct {
	books   ports.BookService
	users   ports.UserService
	borrows ports.BorrowService
}

func NewAdminHandler(books ports.BookService, users ports.UserService, borrows ports.BorrowService) *AdminHandler {
	return &AdminHandler{books: books, users: users, borrows: borrows}
}

// Books lists the whole catalogue.
//
// @Summary      List all books
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Book
// @Router       /api/admin [get]
func (h *AdminHandler) Books(ctx context.Context, _ *wire.Request) (*wire.Response, error) {
	books, err := h.books.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return listOK(books), nil
}

// SearchBooks matches the term against title, author and isbn. The term is
// used as sent, without percent-decoding.
//
// @Summary      Search books
// @Tags         admin
// @Produce      json
// @Param        search  query    string  false  "Substring of title, author or isbn"
// @Success      200     {array}  domain.Book
// @Router       /api/admin/books [get]
func (h *AdminHandler) SearchBooks(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	term, _ := req.Query.Get("search")

	books, err := h.books.SearchBooks(ctx, term)
	if err != nil {
		return nil, err
	}
	return listOK(books), nil
}

// Users lists every account.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /api/admin/users [get]
func (h *AdminHandler) Users(ctx context.Context, _ *wire.Request) (*wire.Response, error) {
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return listOK(users), nil
}

// DeleteUser removes an account. Deleting an unknown id still succeeds.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Param        id   query     int  true  "User id"
// @Success      200  {object}  statusResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/admin/users [delete]
func (h *AdminHandler) DeleteUser(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	id, ok := queryInt(req, "id")
	if !ok {
		return nil, domain.Invalid("Invalid or missing user ID")
	}

	if err := h.users.DeleteUser(ctx, id); err != nil {
		return nil, err
	}
	return statusOK("deleted"), nil
}

// Borrowed lists every open loan with its borrower.
//
// @Summary      List all borrowed books
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.LedgerView
// @Router       /api/admin/borrowed [get]
func (h *AdminHandler) Borrowed(ctx context.Context, _ *wire.Request) (*wire.Response, error) {
	loans, err := h.borrows.AllActiveLoans(ctx)
	if err != nil {
		return nil, err
	}
	return listOK(loans), nil
}

// Overdue lists every open loan past its due date.
//
// @Summary      List all overdue books
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.LedgerView
// @Router       /api/admin/overdue [get]
func (h *AdminHandler) Overdue(ctx context.Context, _ *wire.Request) (*wire.Response, error) {
	loans, err := h.borrows.AllOverdueLoans(ctx)
	if err != nil {
		return nil, err
	}
	return listOK(loans), nil
}
