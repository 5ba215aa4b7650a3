package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for eligibility evaluation.
type Metrics struct {
	Evaluations prometheus.Counter
	GateDenied  *prometheus.CounterVec
}

// New creates a Metrics instance with all eligibility metrics registered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "paylane_eligibility_evaluations_total",
			Help: "Total number of eligibility evaluations",
		}),
		GateDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_eligibility_gate_denied_total",
			Help: "Capability gate denials by capability",
		}, []string{"capability"}),
	}
}
