// Package router dispatches HTTP requests to typed handlers.
//
// Routing is backed by a chi tree; middleware, grouping and error handling work on
// the typed handler.Context so middlewares such as the session loader and the
// forgery gate can share request-scoped values without touching http.Handler.
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.ErrorHandler[*router.Context]),
//	)
//	r.Use(middleware.Session[*router.Context, SessionData](transport))
//
//	r.Route("/articles", func(r router.Router[*router.Context]) {
//		r.Get("/", listArticles)
//		r.With(middleware.CSRF[*router.Context, SessionData](articles, "create")).
//			Post("/", createArticle)
//	})
//
// Path parameters use chi syntax ({id}, {id:[0-9]+}, *) and are read with ctx.Param.
//
// Middlewares registered with Use wrap every route of the router, including routes
// of routers mounted into it. Use must be called before the first route is added.
// Inline routers created by With and Group share the parent's tree and only add
// their own middlewares to the routes registered through them.
//
// Handlers return a handler.Response. A nil response or a response returning an
// error is passed to the error handler; panics are recovered and passed as a
// PanicError unless the response has already been written.
package router
