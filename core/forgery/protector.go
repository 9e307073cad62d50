package forgery

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/antiforgery/core/logger"
)

// Protector owns the process-wide switch and the registered action groups.
type Protector struct {
	enabled  bool
	defaults ProtectionConfig
	metrics  *Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	groups map[string]*Group
}

// New creates a Protector. Protection is enabled unless WithEnabled(false) is given.
func New(opts ...ProtectorOption) *Protector {
	p := &Protector{
		enabled: true,
		defaults: ProtectionConfig{
			Digest:     DefaultDigest,
			TokenParam: DefaultTokenParam,
		},
		logger: logger.Nop(),
		groups: make(map[string]*Group),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig creates a Protector from environment configuration.
// An unknown digest name is reported here rather than on the first request.
func NewFromConfig(cfg Config, opts ...ProtectorOption) (*Protector, error) {
	if _, err := LookupDigest(cfg.Digest); err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}
	base := []ProtectorOption{
		WithEnabled(cfg.Enabled),
		WithDefaults(WithSecret(cfg.Secret), WithDigest(cfg.Digest), WithTokenParam(cfg.TokenParam)),
	}
	return New(append(base, opts...)...), nil
}

// Enabled reports the process-wide switch.
func (p *Protector) Enabled() bool {
	return p.enabled
}

// Group returns the action group with the given name, creating it on first use.
func (p *Protector) Group(name string) *Group {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.groups[name]; ok {
		return g
	}
	g := &Group{
		name:      name,
		protector: p,
		cfg:       p.defaults,
		gates:     make(map[string]bool),
	}
	p.groups[name] = g
	p.logger.Debug("action group registered", logger.Component("forgery"), slog.String("group", name))
	return g
}

// Groups returns the registered group names in sorted order.
func (p *Protector) Groups() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Sorted(maps.Keys(p.groups))
}
