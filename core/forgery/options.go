package forgery

import (
	"log/slog"
)

// Option configures a Group.Protect call.
type Option func(*protectOptions)

type protectOptions struct {
	cfg    ProtectionConfig
	only   map[string]struct{}
	except map[string]struct{}
}

// Only restricts the gate installed by this Protect call to the named actions.
func Only(actions ...string) Option {
	return func(o *protectOptions) {
		o.only = addAll(o.only, actions)
	}
}

// Except removes the named actions from the gate installed by this Protect call.
func Except(actions ...string) Option {
	return func(o *protectOptions) {
		o.except = addAll(o.except, actions)
	}
}

// WithSecret sets a literal HMAC key and clears any secret function.
// An empty secret leaves tokens to the session store.
func WithSecret(secret string) Option {
	return func(o *protectOptions) {
		o.cfg.Secret = secret
		o.cfg.SecretFunc = nil
	}
}

// WithSecretFunc derives the HMAC key from the current session and clears any literal secret.
func WithSecretFunc(fn func(Session) (string, error)) Option {
	return func(o *protectOptions) {
		o.cfg.SecretFunc = fn
		o.cfg.Secret = ""
	}
}

// WithDigest sets the HMAC digest algorithm (see Digests).
func WithDigest(name string) Option {
	return func(o *protectOptions) {
		o.cfg.Digest = name
	}
}

// WithTokenParam sets the request parameter that carries the token.
func WithTokenParam(name string) Option {
	return func(o *protectOptions) {
		if name != "" {
			o.cfg.TokenParam = name
		}
	}
}

func addAll(set map[string]struct{}, items []string) map[string]struct{} {
	if set == nil {
		set = make(map[string]struct{}, len(items))
	}
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// ProtectorOption configures a Protector.
type ProtectorOption func(*Protector)

// WithEnabled sets the process-wide switch. When false every request passes.
// Disable only in test environments.
func WithEnabled(enabled bool) ProtectorOption {
	return func(p *Protector) {
		p.enabled = enabled
	}
}

// WithDefaults sets options applied to every group before its own Protect calls.
// Only and Except are ignored here.
func WithDefaults(opts ...Option) ProtectorOption {
	return func(p *Protector) {
		o := protectOptions{cfg: p.defaults}
		for _, opt := range opts {
			opt(&o)
		}
		p.defaults = o.cfg
	}
}

// WithMetrics records gate decisions and token computations in m.
func WithMetrics(m *Metrics) ProtectorOption {
	return func(p *Protector) {
		p.metrics = m
	}
}

// WithLogger sets the logger for group registration events. A nil logger is ignored.
func WithLogger(l *slog.Logger) ProtectorOption {
	return func(p *Protector) {
		if l != nil {
			p.logger = l
		}
	}
}
