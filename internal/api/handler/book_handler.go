package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const (
	msgInvalidBookFields = "Missing or invalid book fields"
	msgInvalidBookID     = "Invalid book id"
	msgMissingBookID     = "Missing or invalid book id"
)

// BookHandler serves the catalogue endpoints.
type BookHandler struct {
	service  ports.BookService
	validate *Validator
	log      zerolog.Logger
}

func NewBookHandler(service ports.BookService, validate *Validator, log zerolog.Logger) *BookHandler {
	return &BookHandler{service: service, validate: validate, log: log}
}

// bookRequest is the create/update payload. Text fields are trimmed before
// validation; publication_year must be present and non-zero.
type bookRequest struct {
	ID              int64  `json:"id,omitempty"`
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	PublicationYear int64  `json:"publication_year" validate:"ne=0"`
	Genre           string `json:"genre" validate:"required"`
	CopiesAvailable int64  `json:"copies_available" example:"1"`
	Status          string `json:"status,omitempty" example:"available"`
}

func bookRequestFrom(f wire.Fields) bookRequest {
	return bookRequest{
		ID:              f.IntOr("id", -1),
		Title:           strings.TrimSpace(f.String("title")),
		Author:          strings.TrimSpace(f.String("author")),
		ISBN:            strings.TrimSpace(f.String("isbn")),
		PublicationYear: f.IntOr("publication_year", 0),
		Genre:           strings.TrimSpace(f.String("genre")),
		CopiesAvailable: f.IntOr("copies_available", domain.DefaultCopies),
		Status:          strings.TrimSpace(f.StringOr("status", domain.BookStatusAvailable)),
	}
}

func (r bookRequest) toInput() ports.BookInput {
	return ports.BookInput{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
		Genre:           r.Genre,
		CopiesAvailable: r.CopiesAvailable,
		Status:          r.Status,
	}
}

func (h *BookHandler) checkFields(r bookRequest) error {
	if err := h.validate.Validate(r); err != nil {
		h.log.Debug().Err(err).Msg("book payload rejected")
		return domain.Invalid(msgInvalidBookFields)
	}
	return nil
}

// Get returns one book.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   query     int  true  "Book id"
// @Success      200  {object}  domain.Book
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/book [get]
func (h *BookHandler) Get(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	id, ok := queryInt(req, "id")
	if !ok {
		return nil, domain.Invalid(msgMissingBookID)
	}

	book, err := h.service.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return wire.JSON(http.StatusOK, book), nil
}

// Create adds a book to the catalogue.
//
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        body  body      bookRequest  true  "Book; copies_available defaults to 1"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/book [post]
func (h *BookHandler) Create(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	f, err := decodeJSON(req)
	if err != nil {
		return nil, err
	}

	in := bookRequestFrom(f)
	if err := h.checkFields(in); err != nil {
		return nil, err
	}

	if _, err := h.service.CreateBook(ctx, in.toInput()); err != nil {
		return nil, err
	}
	return statusOK("book added"), nil
}

// Update replaces every field of a book.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        body  body      bookRequest  true  "Book with id; status defaults to available"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/book [put]
func (h *BookHandler) Update(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	f, err := decodeJSON(req)
	if err != nil {
		return nil, err
	}

	in := bookRequestFrom(f)
	if in.ID < 1 {
		return nil, domain.Invalid(msgInvalidBookID)
	}
	if err := h.checkFields(in); err != nil {
		return nil, err
	}

	if err := h.service.UpdateBook(ctx, in.toInput()); err != nil {
		return nil, err
	}
	return statusOK("book updated"), nil
}

// Delete removes a book.
//
// @Summary      Delete a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{\"id\": 1}"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/book [delete]
func (h *BookHandler) Delete(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	f, err := decodeJSON(req)
	if err != nil {
		return nil, err
	}

	id := f.IntOr("id", -1)
	if id < 1 {
		return nil, domain.Invalid(msgInvalidBookID)
	}

	if err := h.service.DeleteBook(ctx, id); err != nil {
		return nil, err
	}
	return statusOK("book deleted"), nil
}
