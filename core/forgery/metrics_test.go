package forgery_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/antiforgery/core/forgery"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := forgery.NewMetrics(reg)
	require.NoError(t, err)

	gate := forgery.New(forgery.WithMetrics(m)).
		Group("articles").
		Protect(forgery.WithSecret("s3cr3t")).
		Gate("create")

	tok := gate.Token(&fakeSession{id: "abc123"}, nil)
	_, _ = gate.Check(formPost(expected), tok)
	_, _ = gate.Check(formPost("wrong"), tok)

	get := formPost("")
	get.Method = "GET"
	_, _ = gate.Check(get, gate.Token(&fakeSession{id: "abc123"}, nil))

	missing := gate.Token(&fakeSession{}, nil)
	_, _ = gate.Check(formPost(expected), missing)

	// series: verified, rejected (mismatch and missing session), safe_method
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "csrf_decisions_total"))
	// series: secret_hmac/ok, secret_hmac/missing_session
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "csrf_tokens_total"))

	_, err = forgery.NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *forgery.Metrics
	assert.NotPanics(t, func() {
		m.ObserveDecision("g", "a", forgery.DecisionVerified)
		m.ObserveToken(forgery.StrategySecretHMAC, nil)
	})
}
