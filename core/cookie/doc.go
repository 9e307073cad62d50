// Package cookie reads and writes HTTP cookies with optional signing and encryption.
//
// A Manager is built from one or more secrets of at least 32 characters. The
// first secret signs (HMAC-SHA256) and encrypts (AES-256-GCM); every secret is
// tried on read, so keys can be rotated by prepending a new one:
//
//	m, err := cookie.New([]string{newSecret, oldSecret},
//		cookie.WithSecure(true),
//		cookie.WithSameSite(http.SameSiteStrictMode),
//	)
//
//	_ = m.SetEncrypted(w, "session", token)
//	token, err := m.GetEncrypted(r, "session")
//
// Defaults are Path "/", HttpOnly and SameSite=Lax. Cookies larger than the
// configured maximum (4KB unless WithMaxSize is used) are rejected with
// ErrCookieTooLarge.
//
// Digest derives a keyed hex digest for an arbitrary value. The session cookie
// transport uses it to turn a per-session csrf id into an authenticity token
// without storing the token itself.
//
// NewFromConfig builds a Manager from the COOKIE_* environment variables, see Config.
package cookie
