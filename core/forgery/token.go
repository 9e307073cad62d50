package forgery

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// Strategy identifies how a token is derived.
type Strategy int

const (
	// StrategyNone means no token can be derived with the given configuration.
	StrategyNone Strategy = iota
	// StrategySecretHMAC derives the token as HMAC(secret, session id).
	StrategySecretHMAC
	// StrategySessionDigest delegates to the session store using the session csrf id.
	StrategySessionDigest
)

func (s Strategy) String() string {
	switch s {
	case StrategySecretHMAC:
		return "secret_hmac"
	case StrategySessionDigest:
		return "session_digest"
	default:
		return "none"
	}
}

// StrategyFor returns the strategy ComputeToken will use.
func StrategyFor(store DigestGenerator, cfg ProtectionConfig) Strategy {
	switch {
	case cfg.HasSecret():
		return StrategySecretHMAC
	case store != nil:
		return StrategySessionDigest
	default:
		return StrategyNone
	}
}

const csrfIDBytes = 32

// ComputeToken derives the authenticity token for sess.
//
// With a secret the token is the hex HMAC of the session id under that secret.
// Otherwise, if store can generate digests, the session gets a random csrf id
// (assigned once, reused afterwards) and the store digests it. Without either,
// ComputeToken fails with ErrConfiguration.
func ComputeToken(sess Session, store DigestGenerator, cfg ProtectionConfig) (string, error) {
	if sess == nil || sess.SessionID() == "" {
		return "", ErrMissingSession
	}

	switch StrategyFor(store, cfg) {
	case StrategySecretHMAC:
		secret, err := cfg.resolveSecret(sess)
		if err != nil {
			return "", errors.Join(ErrConfiguration, err)
		}
		token, err := HMAC(cfg.digest(), secret, sess.SessionID())
		if err != nil {
			return "", errors.Join(ErrConfiguration, err)
		}
		return token, nil

	case StrategySessionDigest:
		id := sess.CSRFID()
		if id == "" {
			var err error
			if id, err = newCSRFID(); err != nil {
				return "", err
			}
			sess.SetCSRFID(id)
		}
		token, err := store.GenerateDigest(id)
		if err != nil {
			return "", fmt.Errorf("forgery: generate digest: %w", err)
		}
		return token, nil

	default:
		return "", ErrConfiguration
	}
}

func newCSRFID() (string, error) {
	b := make([]byte, csrfIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("forgery: generate csrf id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RequestToken memoizes the token of one request. The memo is dropped when
// the session id or csrf id it was derived from changes, as after login.
// It is not safe for concurrent use and must not outlive the request.
type RequestToken struct {
	sess  Session
	store DigestGenerator
	cfg   ProtectionConfig
	obs   func(Strategy, error)

	done      bool
	value     string
	err       error
	sessionID string
	csrfID    string
}

// NewRequestToken prepares a lazily computed token for one request.
func NewRequestToken(sess Session, store DigestGenerator, cfg ProtectionConfig) *RequestToken {
	return &RequestToken{sess: sess, store: store, cfg: cfg}
}

// Value computes the token on first call and returns the same result until
// the session it was derived from changes.
func (t *RequestToken) Value() (string, error) {
	if !t.Computed() {
		t.value, t.err = ComputeToken(t.sess, t.store, t.cfg)
		t.done = true
		t.sessionID, t.csrfID = t.source()
		if t.obs != nil {
			t.obs(t.Strategy(), t.err)
		}
	}
	return t.value, t.err
}

// Computed reports whether Value holds a token for the current session.
func (t *RequestToken) Computed() bool {
	if !t.done {
		return false
	}
	sessionID, csrfID := t.source()
	return sessionID == t.sessionID && csrfID == t.csrfID
}

func (t *RequestToken) source() (sessionID, csrfID string) {
	if t.sess == nil {
		return "", ""
	}
	if t.Strategy() == StrategySessionDigest {
		csrfID = t.sess.CSRFID()
	}
	return t.sess.SessionID(), csrfID
}

func (t *RequestToken) Strategy() Strategy {
	return StrategyFor(t.store, t.cfg)
}
