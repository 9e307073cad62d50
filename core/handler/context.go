package handler

import (
	"context"
	"net/http"
)

// Context is the request context passed through handlers and middleware.
// SetValue stores a request-scoped value readable through Value.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
