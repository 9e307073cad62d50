package cookie

import (
	"errors"
	"fmt"
)

var (
	ErrNoSecret       = errors.New("cookie: no secret configured")
	ErrSecretTooShort = errors.New("cookie: secret must be at least 32 characters")

	// ErrInvalidSignature means the value was tampered with or signed by an unknown secret.
	ErrInvalidSignature = errors.New("cookie: invalid signature")
	ErrDecryptionFailed = errors.New("cookie: decryption failed")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: malformed value")
)

// ErrCookieTooLarge is returned by Set when the encoded cookie would exceed
// the manager's size limit. Browsers drop such cookies silently.
type ErrCookieTooLarge struct {
	Name string
	Size int
	Max  int
}

func (e ErrCookieTooLarge) Error() string {
	return fmt.Sprintf("cookie: %q is %d bytes, limit %d", e.Name, e.Size, e.Max)
}
