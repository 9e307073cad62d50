package forgery

import "errors"

var (
	// ErrInvalidAuthenticityToken is the single rejection callers see. The other
	// errors are joined with it and only distinguish causes for operators.
	ErrInvalidAuthenticityToken = errors.New("forgery: invalid authenticity token")
	ErrMissingSession           = errors.New("forgery: session has no identifier")
	ErrConfiguration            = errors.New("forgery: no secret configured and session store cannot self-generate digests")
	ErrUnknownDigest            = errors.New("forgery: unknown digest algorithm")
	ErrGroupSealed              = errors.New("forgery: protection changed after the group was sealed")
)
