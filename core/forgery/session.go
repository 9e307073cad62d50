package forgery

// Session is the part of a user session needed to derive tokens.
type Session interface {
	// SessionID returns the stable session identifier, or "" when there is none.
	SessionID() string
	CSRFID() string
	// SetCSRFID stores the csrf id on the session so it outlives the request.
	SetCSRFID(id string)
}

// DigestGenerator is implemented by session stores that can derive a stable
// secret digest from an identifier. It enables tokens without an application secret.
type DigestGenerator interface {
	GenerateDigest(id string) (string, error)
}
