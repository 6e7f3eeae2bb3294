package api

import (
	"github.com/openshelf/library-system/internal/api/wire"
)

type routeKey struct {
	method string
	path   string
}

// Router is a fixed table from (method, exact path) to handler. It is filled
// once at startup and only read afterwards.
type Router struct {
	routes map[routeKey]wire.HandlerFunc
}

func NewRouter() *Router {
	return &Router{routes: make(map[routeKey]wire.HandlerFunc)}
}

// Handle registers h. A second registration of the same pair replaces the first.
func (r *Router) Handle(method, path string, h wire.HandlerFunc) {
	r.routes[routeKey{method: method, path: path}] = h
}

// Match compares method and path by exact string equality. The path must
// already have its query stripped.
func (r *Router) Match(method, path string) (wire.HandlerFunc, bool) {
	h, ok := r.routes[routeKey{method: method, path: path}]
	return h, ok
}

// Len returns the number of registered routes.
func (r *Router) Len() int {
	return len(r.routes)
}
