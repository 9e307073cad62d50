// Package handler defines the request pipeline primitives shared by the router,
// the middleware and the forgery gate.
//
// A handler receives a request context and returns a Response, a deferred render
// function. Middleware wraps handlers and may short-circuit the pipeline by
// returning its own Response without calling next:
//
//	func Gate[C handler.Context]() handler.Middleware[C] {
//		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//			return func(ctx C) handler.Response {
//				if !allowed(ctx.Request()) {
//					return response.Error(response.ErrForbidden)
//				}
//				return next(ctx)
//			}
//		}
//	}
//
// Context extends context.Context with access to the request, the response writer,
// path parameters and request-scoped values. Values stored with SetValue are visible
// to every later middleware and to the handler through Value.
package handler
