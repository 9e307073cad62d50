// Package forgery implements request forgery (CSRF) protection.
//
// A Protector holds the process-wide switch and a set of named action groups.
// A group is enabled with Protect, which accepts Only and Except to pick the
// gated actions plus the token options (WithSecret, WithSecretFunc,
// WithDigest, WithTokenParam). Repeated Protect calls merge their token
// options and each add one action scope:
//
//	p := forgery.New(forgery.WithDefaults(forgery.WithSecret(secret)))
//	articles := p.Group("articles").Protect(forgery.Except("webhook"))
//
// Resolving an action (Gate, Action or Config) seals the group. The gate table
// is fixed from then on and a later Protect panics with ErrGroupSealed.
//
// # Tokens
//
// With a secret, the token is the lowercase hex HMAC of the session id keyed
// by the secret, using the configured digest (SHA1 unless set; see Digests).
// Without a secret, a session store implementing DigestGenerator derives the
// token from a random csrf id stored on the session the first time it is
// needed. Tokens stay valid for the life of the session. With neither,
// ComputeToken fails with ErrConfiguration; a session without an id fails
// with ErrMissingSession. RequestToken memoizes the result for one request.
//
// # Verification
//
// A request passes when protection is off for it, its method is GET or HEAD,
// its content type is not an HTML form or script type (see IsCheckable), or
// the token submitted under the token parameter, or in the X-CSRF-Token
// header, equals the expected token. Comparison is constant time.
//
//	gate := articles.Gate("create")
//	tok := gate.Token(sess, store)
//	req, err := forgery.ParseRequest(r, forgery.DefaultMaxMemory)
//	if _, err := gate.Check(req, tok); err != nil {
//		// errors.Is(err, forgery.ErrInvalidAuthenticityToken) is always true here
//	}
//
// Decide and IsVerified expose the same decision as pure functions.
// The middleware package wires all of this into the router.
package forgery
