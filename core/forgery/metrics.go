package forgery

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes protection counters. A nil *Metrics records nothing.
type Metrics struct {
	decisions *prometheus.CounterVec
	tokens    *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csrf_decisions_total",
				Help: "Request forgery checks by group, action and decision",
			},
			[]string{"group", "action", "decision"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csrf_tokens_total",
				Help: "Authenticity tokens computed by strategy and result",
			},
			[]string{"strategy", "result"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.decisions, m.tokens} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveDecision counts one gate decision. A nil Metrics records nothing.
func (m *Metrics) ObserveDecision(group, action string, d Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(group, action, d.String()).Inc()
}

// ObserveToken counts one token computation by strategy and outcome.
func (m *Metrics) ObserveToken(s Strategy, err error) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(s.String(), tokenResult(err)).Inc()
}

func tokenResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingSession):
		return "missing_session"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "error"
	}
}
