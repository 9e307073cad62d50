package middleware

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/antiforgery/core/forgery"
	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/logger"
	"github.com/dmitrymomot/antiforgery/core/response"
)

// ErrCSRFNotConfigured is returned by the token accessors when the CSRF
// middleware did not run for the request.
var ErrCSRFNotConfigured = errors.New("csrf middleware: not configured for this request")

type csrfKey struct{}

type csrfState struct {
	token     *forgery.RequestToken
	protected bool
	param     string
}

// CSRFConfig configures the CSRF middleware.
type CSRFConfig[C handler.Context, Data any] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Group is the action group the route belongs to (required)
	Group *forgery.Group
	// Action identifies the route inside the group
	Action string
	// Digest derives tokens from the session csrf id when the group has no secret.
	// sessiontransport.Cookie and the redis SessionStore implement it.
	Digest forgery.DigestGenerator
	// MaxMemory bounds multipart parsing (default: forgery.DefaultMaxMemory)
	MaxMemory int64
	// Logger for structured logging (default: discard)
	Logger *slog.Logger
	// ErrorHandler renders rejected requests
	// Default: response.Error(response.ErrInvalidAuthenticityToken)
	ErrorHandler func(ctx C, err error) handler.Response
}

// CSRF gates one action of group. It must run inside the Session middleware.
func CSRF[C handler.Context, Data any](group *forgery.Group, action string) handler.Middleware[C] {
	return CSRFWithConfig[C, Data](CSRFConfig[C, Data]{
		Group:  group,
		Action: action,
	})
}

// CSRFWithConfig creates a CSRF middleware with custom configuration.
//
// The group is sealed when the middleware is built, so all Protect calls have
// to happen before routes are registered. Per request the middleware:
//   - exposes the request token through CSRFToken and CSRFField
//   - verifies unsafe requests with a checkable content type when the action is gated
//   - makes sure a csrf id assigned while computing the token is on the
//     context session before Session stores it
func CSRFWithConfig[C handler.Context, Data any](cfg CSRFConfig[C, Data]) handler.Middleware[C] {
	if cfg.Group == nil {
		panic("csrf middleware: group is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = forgery.DefaultMaxMemory
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return response.Error(response.ErrInvalidAuthenticityToken)
		}
	}

	gate := cfg.Group.Gate(cfg.Action)
	log := cfg.Logger.With(
		logger.Component("csrf"),
		slog.String("group", gate.Group()),
		logger.Action(gate.Action()),
	)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			tok := gate.Token(csrfSession[Data]{ctx: ctx}, cfg.Digest)
			ctx.SetValue(csrfKey{}, &csrfState{
				token:     tok,
				protected: gate.Protected(),
				param:     gate.Config().Param(),
			})

			r := ctx.Request()
			req := forgery.Request{Method: r.Method}
			if gate.Protected() {
				var err error
				if req, err = forgery.ParseRequest(r, cfg.MaxMemory); err != nil {
					log.WarnContext(ctx, "unreadable request body",
						logger.Method(r.Method),
						logger.Path(r.URL.Path),
						logger.Error(err),
					)
					return cfg.ErrorHandler(ctx, errors.Join(forgery.ErrInvalidAuthenticityToken, err))
				}
			}

			decision, err := gate.Check(req, tok)
			if err != nil {
				attrs := []any{
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Result(decision.String()),
					logger.Strategy(tok.Strategy().String()),
				}
				if errors.Is(err, forgery.ErrMissingSession) || errors.Is(err, forgery.ErrConfiguration) {
					log.ErrorContext(ctx, "authenticity token unavailable", append(attrs, logger.Error(err))...)
				} else {
					log.WarnContext(ctx, "invalid authenticity token", attrs...)
				}
				return cfg.ErrorHandler(ctx, err)
			}

			resp := next(ctx)

			// A token rendered later (templates run after Session stored the
			// session) must not assign a csrf id that never gets persisted.
			// This also covers handlers that cleared the csrf id, as on login.
			if gate.Config().Enabled && !tok.Computed() {
				if _, ok := GetSession[Data](ctx); ok {
					if _, err := tok.Value(); err != nil {
						log.DebugContext(ctx, "authenticity token not prepared", logger.Error(err))
					}
				}
			}

			return resp
		}
	}
}

// CSRFToken returns the authenticity token of the current request. The value
// is computed once per request.
func CSRFToken(ctx handler.Context) (string, error) {
	st, ok := ctx.Value(csrfKey{}).(*csrfState)
	if !ok {
		return "", ErrCSRFNotConfigured
	}
	return st.token.Value()
}

// CSRFProtected reports whether the current action is gated.
func CSRFProtected(ctx handler.Context) bool {
	st, ok := ctx.Value(csrfKey{}).(*csrfState)
	return ok && st.protected
}

// CSRFField returns a hidden form input carrying the token, for html/template
// views. It is empty when no token is available.
func CSRFField(ctx handler.Context) template.HTML {
	st, ok := ctx.Value(csrfKey{}).(*csrfState)
	if !ok {
		return ""
	}
	token, err := st.token.Value()
	if err != nil {
		return ""
	}
	return template.HTML(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`,
		template.HTMLEscapeString(st.param),
		template.HTMLEscapeString(token),
	))
}

// CSRFTokenHandler serves the token as JSON for script clients, which send it
// back in the X-CSRF-Token header. Mount it behind the CSRF middleware.
func CSRFTokenHandler[C handler.Context]() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		token, err := CSRFToken(ctx)
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		st, _ := ctx.Value(csrfKey{}).(*csrfState)
		return response.JSON(map[string]string{
			"token":  token,
			"param":  st.param,
			"header": forgery.HeaderName,
		})
	}
}

// csrfSession exposes the context session to the forgery package. It reads
// the session on every call so changes made by handlers are never overwritten.
type csrfSession[Data any] struct {
	ctx handler.Context
}

func (s csrfSession[Data]) SessionID() string {
	sess, ok := GetSession[Data](s.ctx)
	if !ok || sess.ID == uuid.Nil {
		return ""
	}
	return sess.ID.String()
}

func (s csrfSession[Data]) CSRFID() string {
	sess, _ := GetSession[Data](s.ctx)
	return sess.CSRFID
}

func (s csrfSession[Data]) SetCSRFID(id string) {
	sess, ok := GetSession[Data](s.ctx)
	if !ok {
		return
	}
	sess.SetCSRFID(id)
	SetSession(s.ctx, sess)
}
