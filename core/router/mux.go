package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/antiforgery/core/handler"
)

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

// mux implements Router on top of a chi routing tree. Middlewares are kept on
// the mux itself so they operate on the typed context instead of http.Handler.
type mux[C handler.Context] struct {
	tree         chi.Router
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger

	parent    *mux[C] // enclosing router of an inline group
	mountedOn *mux[C] // router this one is mounted into
	inline    bool
	hasRoutes bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         chi.NewRouter(),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	m.tree.NotFound(func(w http.ResponseWriter, r *http.Request) {
		m.serveError(w, r, notFoundError{ErrNotFound})
	})
	m.tree.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		m.serveError(w, r, methodNotAllowedError{ErrMethodNotAllowed})
	})

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.tree.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C])  { m.handle(http.MethodGet, pattern, h) }
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) { m.handle(http.MethodPost, pattern, h) }
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C])  { m.handle(http.MethodPut, pattern, h) }
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) { m.handle(http.MethodHead, pattern, h) }
func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !supportedMethods[method] {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// Use appends middleware to the router. All middlewares must be added before routes.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.base().hasRoutes && !m.inline {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates an inline router sharing this router's tree with extra middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		tree:        m.tree,
		middlewares: middlewares,
		parent:      m,
		inline:      true,
	}
}

// Group creates an inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Route creates a sub-router mounted at pattern.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}

	base := m.base()
	sub := newMux[C](
		WithErrorHandler(base.errorHandler),
		WithContextFactory(base.newContext),
		WithLogger[C](base.logger),
	)
	fn(sub)
	m.Mount(pattern, sub)
	return sub
}

// Mount attaches a sub-router at pattern. The sub-router inherits the error
// handler, logger and context factory, and runs inside this router's middlewares.
func (m *mux[C]) Mount(pattern string, sub Router[C]) {
	if sub == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilRouter, pattern))
	}

	subMux, ok := sub.(*mux[C])
	if !ok {
		panic("router: can only mount routers created by router.New")
	}
	subMux = subMux.base()

	base := m.base()
	subMux.errorHandler = base.errorHandler
	subMux.logger = base.logger
	subMux.newContext = base.newContext
	subMux.mountedOn = m

	base.hasRoutes = true
	m.tree.Mount(pattern, subMux.tree)
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	var routes []Route
	_ = chi.Walk(m.tree, func(method, pattern string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, Route{Method: method, Pattern: pattern})
		return nil
	})
	return routes
}

// base returns the non-inline router owning the tree.
func (m *mux[C]) base() *mux[C] {
	for m.inline {
		m = m.parent
	}
	return m
}

// inlineMiddlewares collects middlewares from the inline group chain, outermost first.
func (m *mux[C]) inlineMiddlewares() []handler.Middleware[C] {
	var all []handler.Middleware[C]
	for curr := m; curr != nil && curr.inline; curr = curr.parent {
		all = append(append([]handler.Middleware[C]{}, curr.middlewares...), all...)
	}
	return all
}

// routerMiddlewares collects middlewares of this router and the routers it is mounted into,
// outermost first. Evaluated per request, so a mount after registration is still honored.
func (m *mux[C]) routerMiddlewares() []handler.Middleware[C] {
	var all []handler.Middleware[C]
	for curr := m.base(); curr != nil; {
		all = append(append([]handler.Middleware[C]{}, curr.middlewares...), all...)
		if curr.mountedOn == nil {
			break
		}
		inline := curr.mountedOn.inlineMiddlewares()
		all = append(append([]handler.Middleware[C]{}, inline...), all...)
		curr = curr.mountedOn.base()
	}
	return all
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}

	m.base().hasRoutes = true

	if mws := m.inlineMiddlewares(); len(mws) > 0 {
		fn = handler.Chain(fn, mws...)
	}

	h := m.serve(fn)
	if method == "" {
		m.tree.Handle(pattern, h)
		return
	}
	m.tree.Method(method, pattern, h)
}

func (m *mux[C]) serve(fn handler.HandlerFunc[C]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := m.base()
		ww := newResponseWriter(w)
		ctx := base.newContext(ww, r, urlParams(r))

		defer func() {
			if p := recover(); p != nil {
				perr := &panicError{value: p, stack: debug.Stack()}
				if ww.Written() {
					base.logger.Error("panic after response written",
						"value", perr.value,
						"stack", string(perr.stack),
						"path", r.URL.Path,
						"method", r.Method,
						"status", ww.Status(),
					)
					return
				}
				base.errorHandler(ctx, perr)
			}
		}()

		h := fn
		if mws := base.routerMiddlewares(); len(mws) > 0 {
			h = handler.Chain(fn, mws...)
		}

		resp := h(ctx)
		if resp == nil {
			base.errorHandler(ctx, ErrNilResponse)
			return
		}

		if err := resp(ww, ctx.Request()); err != nil {
			base.errorHandler(ctx, err)
		}
	}
}

func (m *mux[C]) serveError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := m.newContext(newResponseWriter(w), r, nil)
	m.errorHandler(ctx, err)
}

func urlParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) && key != "*" {
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}
