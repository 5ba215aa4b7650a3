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

	m.ClientsCreated.Inc()
	m.TierChanges.WithLabelValues("payroll", "activate").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["paylane_clients_created_total"])
	assert.True(t, names["paylane_tier_changes_total"])
}
