package handler

import (
	"context"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const msgInvalidUserID = "Invalid or missing user_id"

// BorrowHandler serves circulation endpoints for lenders.
type BorrowHandler struct {
	service ports.BorrowService
}

func NewBorrowHandler(service ports.BorrowService) *BorrowHandler {
	return &BorrowHandler{service: service}
}

// Borrow lends one copy of a book.
//
// @Summary      Borrow a book
// @Tags         borrow
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{\"user_id\": 1, \"book_id\": 2}"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/borrow [post]
func (h *BorrowHandler) Borrow(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	f, err := decodeJSON(req)
	if err != nil {
		return nil, err
	}

	userID, ok := f.Int("user_id")
	if !ok {
		return nil, domain.Invalid("Missing user_id")
	}
	bookID, ok := f.Int("book_id")
	if !ok {
		return nil, domain.Invalid("Missing book_id")
	}

	if _, err := h.service.Borrow(ctx, userID, bookID); err != nil {
		return nil, err
	}
	metrics.CirculationTotal.WithLabelValues(string(domain.ActionBorrow)).Inc()
	return statusOK("borrowed"), nil
}

// Return closes an open borrow record.
//
// @Summary      Return a book
// @Tags         borrow
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{\"record_id\": 1}"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/borrow [put]
func (h *BorrowHandler) Return(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	f, err := decodeJSON(req)
	if err != nil {
		return nil, err
	}

	recordID, ok := f.Int("record_id")
	if !ok {
		return nil, domain.Invalid("Missing record_id")
	}

	if err := h.service.Return(ctx, recordID); err != nil {
		return nil, err
	}
	metrics.CirculationTotal.WithLabelValues(string(domain.ActionReturn)).Inc()
	return statusOK("returned"), nil
}

// Active lists a lender's open loans.
//
// @Summary      List borrowed books
// @Tags         borrow
// @Produce      json
// @Param        user_id  query     int  true  "Lender id"
// @Success      200      {array}   domain.LoanView
// @Failure      400      {object}  map[string]string
// @Router       /api/borrow [get]
func (h *BorrowHandler) Active(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	userID, ok := queryInt(req, "user_id")
	if !ok {
		return nil, domain.Invalid(msgInvalidUserID)
	}

	loans, err := h.service.ActiveLoans(ctx, userID)
	if err != nil {
		return nil, err
	}
	return listOK(loans), nil
}

// Overdue lists a lender's open loans past their due date.
//
// @Summary      List overdue books
// @Tags         borrow
// @Produce      json
// @Param        user_id  query     int  true  "Lender id"
// @Success      200      {array}   domain.LoanView
// @Failure      400      {object}  map[string]string
// @Router       /api/borrow/overdue [get]
func (h *BorrowHandler) Overdue(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	userID, ok := queryInt(req, "user_id")
	if !ok {
		return nil, domain.Invalid(msgInvalidUserID)
	}

	loans, err := h.service.OverdueLoans(ctx, userID)
	if err != nil {
		return nil, err
	}
	return listOK(loans), nil
}
