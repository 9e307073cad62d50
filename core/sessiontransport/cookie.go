package sessiontransport

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/antiforgery/core/cookie"
	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/session"
	"github.com/dmitrymomot/antiforgery/pkg/clientip"
)

// csrfDigestPurpose separates csrf digests from any other use of the cookie secret.
const csrfDigestPurpose = "csrf-token"

// Cookie carries Session.Token in a signed cookie.
// It also derives authenticity tokens from a session's csrf id using the cookie secret.
type Cookie[Data any] struct {
	manager   *session.Manager[Data]
	cookieMgr *cookie.Manager
	name      string
	secure    bool
}

// NewCookie creates a new cookie-based session transport.
func NewCookie[Data any](mgr *session.Manager[Data], cookieMgr *cookie.Manager, name string) *Cookie[Data] {
	return &Cookie[Data]{
		manager:   mgr,
		cookieMgr: cookieMgr,
		name:      name,
		secure:    true,
	}
}

// Load returns the session named by the request cookie. A missing, forged,
// unknown or expired cookie yields a fresh anonymous session.
func (c *Cookie[Data]) Load(ctx handler.Context) (session.Session[Data], error) {
	r := ctx.Request()

	token, err := c.cookieMgr.GetSigned(r, c.name)
	if err != nil {
		return c.newSession(r)
	}

	sess, err := c.manager.GetByToken(ctx, token)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return c.newSession(r)
	default:
		return session.Session[Data]{}, err
	}
}

// Store persists the session and refreshes the cookie. A logged out session
// clears the cookie instead.
func (c *Cookie[Data]) Store(ctx handler.Context, sess session.Session[Data]) error {
	if sess.ID == uuid.Nil {
		return nil
	}

	if err := c.manager.Store(ctx, sess); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			c.cookieMgr.Delete(ctx.ResponseWriter(), c.name)
			return nil
		}
		return err
	}

	return c.cookieMgr.SetSigned(ctx.ResponseWriter(), c.name, sess.Token,
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(c.secure),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithMaxAge(int(c.manager.TTL().Seconds())),
	)
}

// GenerateDigest turns a session csrf id into the authenticity token expected
// from the client. The result depends on the cookie secret, so it cannot be
// forged from the csrf id alone.
func (c *Cookie[Data]) GenerateDigest(csrfID string) (string, error) {
	if csrfID == "" {
		return "", ErrEmptyCSRFID
	}
	return c.cookieMgr.Digest(csrfDigestPurpose, csrfID), nil
}

func (c *Cookie[Data]) newSession(r *http.Request) (session.Session[Data], error) {
	return c.manager.New(session.NewSessionParams{
		IP:        clientip.GetIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
}
