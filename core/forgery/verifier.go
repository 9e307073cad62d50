package forgery

import (
	"crypto/subtle"
	"errors"
)

// Decision is the outcome of checking one request.
type Decision int

const (
	DecisionDisabled Decision = iota
	DecisionSafeMethod
	DecisionNotCheckable
	DecisionVerified
	DecisionRejected
)

func (d Decision) String() string {
	switch d {
	case DecisionDisabled:
		return "disabled"
	case DecisionSafeMethod:
		return "safe_method"
	case DecisionNotCheckable:
		return "not_checkable"
	case DecisionVerified:
		return "verified"
	default:
		return "rejected"
	}
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d != DecisionRejected
}

// Decide checks req in order: protection disabled, safe method, content type
// out of scope, and finally the submitted token against the expected one.
// The token is only computed when that last step is reached. A token error
// rejects the request and is returned alongside the decision.
func Decide(enabled bool, req Request, token func() (string, error), cfg ProtectionConfig) (Decision, error) {
	switch {
	case !enabled || !cfg.Enabled:
		return DecisionDisabled, nil
	case IsSafeMethod(req.Method):
		return DecisionSafeMethod, nil
	case !IsCheckable(req.ContentType):
		return DecisionNotCheckable, nil
	}

	expected, err := token()
	if err != nil {
		return DecisionRejected, err
	}
	submitted := req.submitted(cfg.Param())
	if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) != 1 {
		return DecisionRejected, nil
	}
	return DecisionVerified, nil
}

// IsVerified reports whether req may proceed.
func IsVerified(enabled bool, req Request, token func() (string, error), cfg ProtectionConfig) (bool, error) {
	d, err := Decide(enabled, req, token, cfg)
	return d.Allowed(), err
}

// Verify is IsVerified expressed as an error. Every rejection matches
// ErrInvalidAuthenticityToken; token errors are joined to it.
func Verify(enabled bool, req Request, token func() (string, error), cfg ProtectionConfig) error {
	_, err := verify(enabled, req, token, cfg)
	return err
}

func verify(enabled bool, req Request, token func() (string, error), cfg ProtectionConfig) (Decision, error) {
	d, err := Decide(enabled, req, token, cfg)
	switch {
	case err != nil:
		return d, errors.Join(ErrInvalidAuthenticityToken, err)
	case !d.Allowed():
		return d, ErrInvalidAuthenticityToken
	}
	return d, nil
}
