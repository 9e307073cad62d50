package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/antiforgery/core/handler"
)

type statusCode interface {
	StatusCode() int
}

// convertToHTTPError maps any error to an HTTPError, keeping the original as the cause.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	return base.WithError(err)
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler renders errors as JSON. Causes are not exposed to the client.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	httpErr.Details = nil
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
