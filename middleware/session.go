package middleware

import (
	"log/slog"

	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/logger"
	"github.com/dmitrymomot/antiforgery/core/response"
	"github.com/dmitrymomot/antiforgery/core/session"
)

type sessionKey struct{}

// SessionTransport loads the session of a request and persists it afterwards.
// sessiontransport.Cookie is the reference implementation.
type SessionTransport[Data any] interface {
	Load(handler.Context) (session.Session[Data], error)
	Store(handler.Context, session.Session[Data]) error
}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context, Data any] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Transport loads and stores sessions (required)
	Transport SessionTransport[Data]
	// Logger for structured logging (default: discard)
	Logger *slog.Logger
	// RequireAuth rejects requests without an authenticated user
	RequireAuth bool
	// RequireGuest rejects requests with an authenticated user
	RequireGuest bool
	// ErrorHandler renders auth and store failures
	// Default: response.Error(response.ErrUnauthorized)
	ErrorHandler func(ctx C, err error) handler.Response
}

// Session loads the session from the transport, keeps it in the request context
// and stores it after the handler returns.
//
// The store happens before the response is rendered, so anything that must be
// persisted (a csrf id assigned while computing an authenticity token, for
// example) has to be on the context session by the time the handler returns.
// The CSRF middleware takes care of that when it runs inside Session:
//
//	r.Use(middleware.Session[*router.Context, Data](transport))
//	r.With(middleware.CSRF[*router.Context, Data](articles, "create")).Post("/articles", create)
func Session[C handler.Context, Data any](transport SessionTransport[Data]) handler.Middleware[C] {
	return SessionWithConfig[C, Data](SessionConfig[C, Data]{
		Transport: transport,
	})
}

// SessionWithConfig creates a session middleware with custom configuration.
func SessionWithConfig[C handler.Context, Data any](cfg SessionConfig[C, Data]) handler.Middleware[C] {
	if cfg.Transport == nil {
		panic("session middleware: transport is required")
	}

	if cfg.RequireAuth && cfg.RequireGuest {
		panic("session middleware: RequireAuth and RequireGuest cannot both be true")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return response.Error(response.ErrUnauthorized)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			sess, err := cfg.Transport.Load(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return response.Error(ctxErr)
				}
				cfg.Logger.ErrorContext(ctx, "failed to load session",
					logger.Component("session"),
					logger.Error(err),
				)
				// Continue without a session; CSRF rejects unsafe requests with ErrMissingSession.
				sess = session.Session[Data]{}
			}

			if cfg.RequireAuth && !sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrUnauthorized)
			}

			if cfg.RequireGuest && sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrForbidden)
			}

			ctx.SetValue(sessionKey{}, sess)

			resp := next(ctx)

			// The handler or inner middleware may have replaced the session.
			current, ok := GetSession[Data](ctx)
			if !ok {
				return resp
			}

			if err := cfg.Transport.Store(ctx, current); err != nil {
				cfg.Logger.ErrorContext(ctx, "failed to store session",
					logger.Component("session"),
					logger.SessionID(current.ID.String()),
					logger.Error(err),
				)
				return cfg.ErrorHandler(ctx, err)
			}

			return resp
		}
	}
}

// GetSession retrieves the session from the context.
func GetSession[Data any](ctx handler.Context) (session.Session[Data], bool) {
	if ctx == nil {
		return session.Session[Data]{}, false
	}
	sess, ok := ctx.Value(sessionKey{}).(session.Session[Data])
	return sess, ok
}

// MustGetSession retrieves the session from the context or panics.
func MustGetSession[Data any](ctx handler.Context) session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// SetSession replaces the session in the context. The replacement is what
// the session middleware stores.
func SetSession[Data any](ctx handler.Context, sess session.Session[Data]) {
	ctx.SetValue(sessionKey{}, sess)
}
