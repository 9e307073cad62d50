package forgery

// Gate is the pre-action check for one action of a group.
// It is a resolved value and safe to share between requests.
type Gate struct {
	group     string
	action    string
	cfg       ProtectionConfig
	protected bool
	enabled   bool
	metrics   *Metrics
}

func (g Gate) Group() string  { return g.group }
func (g Gate) Action() string { return g.action }

func (g Gate) Config() ProtectionConfig {
	return g.cfg
}

// Protected reports whether requests to this action are verified.
func (g Gate) Protected() bool {
	return g.enabled && g.cfg.Enabled && g.protected
}

// Token prepares the request-scoped token for sess.
func (g Gate) Token(sess Session, store DigestGenerator) *RequestToken {
	t := NewRequestToken(sess, store, g.cfg)
	if g.metrics != nil {
		t.obs = func(s Strategy, err error) {
			g.metrics.ObserveToken(s, err)
		}
	}
	return t
}

// Check verifies req against tok and records the decision.
// A non-nil error always matches ErrInvalidAuthenticityToken.
func (g Gate) Check(req Request, tok *RequestToken) (Decision, error) {
	d, err := verify(g.Protected(), req, tok.Value, g.cfg)
	g.metrics.ObserveDecision(g.group, g.action, d)
	return d, err
}
