package wire

import "context"

// HandlerFunc serves one decoded request. A returned error is rendered into a
// response by the error middleware.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a HandlerFunc.
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies mws so that the first one listed is the outermost.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
