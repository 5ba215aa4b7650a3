package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The /metrics endpoint serves a dedicated registry, so counters must attach
// to the registry the caller passes in, not the global default.
func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Evaluations.Inc()
	m.GateDenied.WithLabelValues("run_payroll").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["paylane_eligibility_evaluations_total"])
	assert.True(t, names["paylane_eligibility_gate_denied_total"])
}
