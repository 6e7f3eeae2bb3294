package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/handler"
	"github.com/openshelf/library-system/internal/api/middleware"
	"github.com/openshelf/library-system/internal/api/wire"
)

// Handlers groups the endpoint handlers mounted on the public listener.
type Handlers struct {
	Auth   *handler.AuthHandler
	Book   *handler.BookHandler
	Borrow *handler.BorrowHandler
	Admin  *handler.AdminHandler
}

// RegisterRoutes fills r with the API table.
func RegisterRoutes(r *Router, h Handlers) {
	// --- Auth routes ---
	r.Handle(wire.MethodPost, "/api/auth/register", h.Auth.Register)
	r.Handle(wire.MethodPost, "/api/auth/login", h.Auth.Login)

	// --- Catalogue ---
	r.Handle(wire.MethodGet, "/api/book", h.Book.Get)
	r.Handle(wire.MethodPost, "/api/book", h.Book.Create)
	r.Handle(wire.MethodPut, "/api/book", h.Book.Update)
	r.Handle(wire.MethodDelete, "/api/book", h.Book.Delete)

	// --- Circulation ---
	r.Handle(wire.MethodPost, "/api/borrow", h.Borrow.Borrow)
	r.Handle(wire.MethodPut, "/api/borrow", h.Borrow.Return)
	r.Handle(wire.MethodGet, "/api/borrow", h.Borrow.Active)
	r.Handle(wire.MethodGet, "/api/borrow/overdue", h.Borrow.Overdue)

	// --- Administration ---
	r.Handle(wire.MethodGet, "/api/admin", h.Admin.Books)
	r.Handle(wire.MethodGet, "/api/admin/books", h.Admin.SearchBooks)
	r.Handle(wire.MethodGet, "/api/admin/users", h.Admin.Users)
	r.Handle(wire.MethodDelete, "/api/admin/users", h.Admin.DeleteUser)
	r.Handle(wire.MethodGet, "/api/admin/borrowed", h.Admin.Borrowed)
	r.Handle(wire.MethodGet, "/api/admin/overdue", h.Admin.Overdue)
}

// Engine answers decoded requests: static stage first, then the route table,
// then a JSON 404.
type Engine struct {
	static *StaticStage
	router *Router
	serve  wire.HandlerFunc
}

// NewEngine composes the request pipeline. static may be nil.
func NewEngine(static *StaticStage, router *Router, errs *ErrorHandler, log zerolog.Logger) *Engine {
	e := &Engine{static: static, router: router}
	e.serve = wire.Chain(e.dispatch,
		middleware.Logging(log, e.routeLabel),
		middleware.Metrics(e.routeLabel),
		errs.Middleware,
		middleware.Recover(log),
	)
	return e
}

// Serve always returns a response.
func (e *Engine) Serve(ctx context.Context, req *wire.Request) *wire.Response {
	resp, err := e.serve(ctx, req)
	if err != nil || resp == nil {
		return wire.Error(http.StatusInternalServerError, internalErrorMessage)
	}
	return resp
}

func (e *Engine) dispatch(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	if e.static != nil {
		if resp, ok := e.static.Serve(req); ok {
			return resp, nil
		}
	}
	if h, ok := e.router.Match(req.Method, req.Path); ok {
		return h(ctx, req)
	}
	return wire.Error(http.StatusNotFound, "Not found"), nil
}

func (e *Engine) routeLabel(req *wire.Request) string {
	if _, ok := e.router.Match(req.Method, req.Path); ok {
		return req.Path
	}
	if req.Method == wire.MethodGet && strings.HasPrefix(req.Path, staticPrefix) {
		return "static"
	}
	return "other"
}
