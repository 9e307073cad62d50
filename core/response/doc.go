// Package response builds handler.Response values and maps errors to HTTP replies.
//
//	func show(ctx *router.Context) handler.Response {
//		return response.JSON(map[string]string{"status": "ok"})
//	}
//
// Errors are returned through Error and rendered by the router's error handler.
// ErrorHandler and JSONErrorHandler convert any error to an HTTPError: an
// HTTPError anywhere in the chain wins, otherwise an error implementing
// StatusCode() int selects the matching predefined error, otherwise 500.
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//
// ErrInvalidAuthenticityToken is the 403 the forgery middleware returns for every
// rejected request.
package response
