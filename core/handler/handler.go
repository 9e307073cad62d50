package handler

import "net/http"

// Response renders the outcome of a handler. A non-nil error is passed to the
// router's error handler instead of being written by the response itself.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a request with a typed context.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler renders errors returned by responses.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a handler. Returning without calling next halts the pipeline.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain wraps h with middlewares so that the first middleware runs first.
func Chain[C Context](h HandlerFunc[C], middlewares ...Middleware[C]) HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
