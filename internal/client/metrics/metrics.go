package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the client module.
type Metrics struct {
	ClientsCreated prometheus.Counter
	TierChanges    *prometheus.CounterVec
}

// New creates a Metrics instance with all client module metrics registered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClientsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "paylane_clients_created_total",
			Help: "Total number of client accounts created",
		}),
		TierChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_tier_changes_total",
			Help: "Tier activations and deactivations by tier and direction",
		}, []string{"tier", "direction"}),
	}
}
