package sessiontransport

import (
	"github.com/dmitrymomot/antiforgery/core/cookie"
	"github.com/dmitrymomot/antiforgery/core/session"
)

// CookieConfig provides environment-based configuration for cookie-based session transport.
type CookieConfig struct {
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
	// Secure marks the session cookie HTTPS-only. Disable only for local development.
	Secure bool `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		CookieName: "__session",
		Secure:     true,
	}
}

// NewCookieFromConfig creates a cookie-based session transport from configuration.
func NewCookieFromConfig[Data any](cfg CookieConfig, mgr *session.Manager[Data], cookieMgr *cookie.Manager) *Cookie[Data] {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieConfig().CookieName
	}
	c := NewCookie(mgr, cookieMgr, name)
	c.secure = cfg.Secure
	return c
}
