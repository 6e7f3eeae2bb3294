package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler turns handler errors into the {"error": "<message>"} envelope.
// Store failures are logged with their cause; the client only sees the cause
// when verbose is set.
type ErrorHandler struct {
	log     zerolog.Logger
	verbose bool
}

func NewErrorHandler(log zerolog.Logger, verbose bool) *ErrorHandler {
	return &ErrorHandler{log: log, verbose: verbose}
}

// Middleware renders any error returned by next. The wrapped handler never
// returns an error.
func (h *ErrorHandler) Middleware(next wire.HandlerFunc) wire.HandlerFunc {
	return func(ctx context.Context, req *wire.Request) (*wire.Response, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return h.Render(err, req), nil
		}
		if resp == nil {
			return wire.Error(http.StatusInternalServerError, internalErrorMessage), nil
		}
		return resp, nil
	}
}

// Render maps err to a response.
func (h *ErrorHandler) Render(err error, req *wire.Request) *wire.Response {
	code, msg := h.resolveError(err, req)
	return wire.Error(code, msg)
}

func (h *ErrorHandler) resolveError(err error, req *wire.Request) (int, string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrMissingBody):
		return http.StatusBadRequest, "No body found"
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusBadRequest, "Unsupported content type"
	case errors.Is(err, domain.ErrMalformedBody):
		return http.StatusBadRequest, "Malformed request body"
	case errors.Is(err, domain.ErrRegistrationForbidden):
		return http.StatusForbidden, "Only lenders can register via this endpoint"
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusForbidden, "Role mismatch"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, "Book not found"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "Borrow record not found or already returned"
	case errors.Is(err, domain.ErrNoCopies):
		return http.StatusBadRequest, "No copies available"
	}

	// Unexpected error: log the real cause, return a generic message.
	h.log.Error().
		Err(err).
		Str("method", req.Method).
		Str("path", req.Path).
		Msg("unhandled error")

	if h.verbose {
		return http.StatusInternalServerError, "Database error: " + err.Error()
	}
	return http.StatusInternalServerError, internalErrorMessage
}
