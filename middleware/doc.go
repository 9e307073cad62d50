// Package middleware provides the HTTP middleware that wires request forgery
// protection into a router: session loading, the CSRF gate, request IDs and
// request logging.
//
// All middleware follow the same pattern: a generic constructor with sensible
// defaults (Session, CSRF, RequestID, Logging) and a WithConfig variant taking a
// configuration struct with Skip, Logger and ErrorHandler hooks.
//
// # Session and CSRF
//
// CSRF reads the session placed in the context by Session, so it must run
// inside it:
//
//	protector, err := forgery.NewFromConfig(cfg.CSRF)
//	articles := protector.Group("articles").Protect(forgery.Except("preview"))
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.Session[*router.Context, Data](transport))
//	r.With(middleware.CSRF[*router.Context, Data](articles, "new")).Get("/articles/new", newArticle)
//	r.With(middleware.CSRF[*router.Context, Data](articles, "create")).Post("/articles", createArticle)
//
// Building the CSRF middleware seals its group, so Protect calls must come
// before route registration.
//
// When the group has no secret, tokens are digests of a per-session csrf id.
// Pass a forgery.DigestGenerator (sessiontransport.Cookie or the redis
// SessionStore) in CSRFConfig.Digest to enable that strategy:
//
//	r.Use(middleware.CSRFWithConfig(middleware.CSRFConfig[*router.Context, Data]{
//		Group:  articles,
//		Action: "create",
//		Digest: transport,
//	}))
//
// Views get the token with CSRFToken or CSRFField; script clients can fetch it
// from CSRFTokenHandler and send it back in the X-CSRF-Token header.
//
// # Request ID and Logging
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
//	r.Use(middleware.RequestID[*router.Context](), middleware.LoggingWithLogger[*router.Context](log))
package middleware
