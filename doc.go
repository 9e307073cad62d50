// Package antiforgery protects web applications against cross-site request
// forgery. Unsafe requests must carry an authenticity token bound to the
// client session; safe requests and requests that cannot be forged
// cross-site pass through.
//
// This file is an index of the packages in the module.
//
// # Core Packages
//
//	github.com/dmitrymomot/antiforgery/core/forgery          - Token derivation, action groups and request verification
//	github.com/dmitrymomot/antiforgery/core/config           - Type-safe environment variable loading
//	github.com/dmitrymomot/antiforgery/core/cookie           - Signed HTTP cookies and keyed digests
//	github.com/dmitrymomot/antiforgery/core/handler          - Type-safe HTTP handler abstractions
//	github.com/dmitrymomot/antiforgery/core/health           - Liveness and readiness probes
//	github.com/dmitrymomot/antiforgery/core/logger           - Structured logging built on slog
//	github.com/dmitrymomot/antiforgery/core/response         - HTTP response helpers and error rendering
//	github.com/dmitrymomot/antiforgery/core/router           - Generic router on top of chi
//	github.com/dmitrymomot/antiforgery/core/server           - HTTP server with graceful shutdown
//	github.com/dmitrymomot/antiforgery/core/session          - Generic sessions carrying a csrf id
//	github.com/dmitrymomot/antiforgery/core/sessiontransport - Cookie session transport and digest generator
//
// # Middleware
//
//	github.com/dmitrymomot/antiforgery/middleware            - Session loading, CSRF gate, request IDs, request logging
//
// # Utilities and Integrations
//
//	github.com/dmitrymomot/antiforgery/pkg/clientip                     - Real client IP extraction
//	github.com/dmitrymomot/antiforgery/integration/database/redis       - Redis connection and session store
//
// # Applications
//
//	github.com/dmitrymomot/antiforgery/app/simple            - Ready wiring of all of the above
//	github.com/dmitrymomot/antiforgery/cmd/antiforgery       - Demo server and token debugging CLI
//
// # Example Usage
//
//	app, err := simple.NewApp(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	articles := app.Group("articles").Protect(forgery.Except("preview"))
//	app.Router().With(app.CSRF(articles, "create")).Post("/articles", createArticle)
//	app.Router().With(app.CSRF(articles, "preview")).Post("/articles/preview", previewArticle)
//
//	if err := app.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package antiforgery
