package sessiontransport

import "errors"

// ErrEmptyCSRFID is returned when a digest is requested for a session without a csrf id.
var ErrEmptyCSRFID = errors.New("sessiontransport: empty csrf id")
