package forgery

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/dmitrymomot/antiforgery/core/logger"
)

// Group is a set of actions sharing one protection configuration, typically
// the handlers of one resource. Protect calls configure it; the first Gate,
// Action or Config call seals it.
type Group struct {
	name      string
	protector *Protector

	mu     sync.Mutex
	sealed bool
	cfg    ProtectionConfig
	scopes []scope
	gates  map[string]bool
}

// scope is the action filter installed by one Protect call.
type scope struct {
	only   map[string]struct{}
	except map[string]struct{}
}

func (s scope) matches(action string) bool {
	if s.only != nil {
		if _, ok := s.only[action]; !ok {
			return false
		}
	}
	_, excluded := s.except[action]
	return !excluded
}

// Name returns the group name used in logs and metric labels.
func (g *Group) Name() string {
	return g.name
}

// Protect enables protection for the group. Each call merges its options into
// the group configuration and adds one gate scope; an action is gated when any
// scope matches it. Protect panics if the group is sealed or the digest is unknown.
func (g *Group) Protect(opts ...Option) *Group {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sealed {
		panic(fmt.Errorf("%w: %s", ErrGroupSealed, g.name))
	}

	o := protectOptions{cfg: g.cfg}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := LookupDigest(o.cfg.Digest); err != nil {
		panic(errors.Join(ErrConfiguration, err))
	}

	g.cfg = o.cfg
	g.cfg.Enabled = true
	g.scopes = append(g.scopes, scope{only: o.only, except: o.except})

	g.protector.logger.Debug("protection enabled",
		logger.Component("forgery"),
		slog.String("group", g.name),
		logger.Digest(g.cfg.digest()),
	)
	return g
}

// Action reports whether the named action is gated. It seals the group.
func (g *Group) Action(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gateLocked(name)
}

// Config returns the resolved configuration. It seals the group.
func (g *Group) Config() ProtectionConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sealed = true
	return g.cfg
}

// Gate returns the pre-action check for the named action. It seals the group.
// The returned Gate is immutable and safe to share between requests.
func (g *Group) Gate(action string) Gate {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Gate{
		group:     g.name,
		action:    action,
		cfg:       g.cfg,
		protected: g.gateLocked(action),
		enabled:   g.protector.enabled,
		metrics:   g.protector.metrics,
	}
}

// Actions returns the gate table built so far: every action looked up since sealing.
func (g *Group) Actions() map[string]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return maps.Clone(g.gates)
}

func (g *Group) gateLocked(action string) bool {
	g.sealed = true
	if gated, ok := g.gates[action]; ok {
		return gated
	}
	gated := false
	for _, s := range g.scopes {
		if s.matches(action) {
			gated = true
			break
		}
	}
	g.gates[action] = gated
	return gated
}
