package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/wire"
)

// ErrPanic wraps a value recovered from a handler panic.
var ErrPanic = errors.New("handler panicked")

// Recover converts a panic in next into an ErrPanic error. It must sit inside
// the error middleware so the error is rendered as a 500.
func Recover(log zerolog.Logger) wire.Middleware {
	return func(next wire.HandlerFunc) wire.HandlerFunc {
		return func(ctx context.Context, req *wire.Request) (resp *wire.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("method", req.Method).
						Str("path", req.Path).
						Bytes("stack", debug.Stack()).
						Msg("recovered from handler panic")
					resp, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()
			return next(ctx, req)
		}
	}
}
