package domain

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrRoleMismatch          = errors.New("role mismatch")
	ErrRegistrationForbidden = errors.New("only lenders can register")
	ErrUnsupportedMediaType  = errors.New("unsupported content type")
	ErrMissingBody           = errors.New("no body found")
	ErrMalformedBody         = errors.New("malformed request body")

	ErrBookNotFound   = errors.New("book not found")
	ErrNoCopies       = errors.New("no copies available")
	ErrRecordNotFound = errors.New("borrow record not found or already returned")
)

// ValidationError is a missing or empty required field. Message is returned to
// the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid returns a ValidationError carrying msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
