package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RunsConfirmed *prometheus.CounterVec
	ChargeLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsConfirmed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_schedule_runs_confirmed_total",
			Help: "Payroll runs confirmed by rule frequency.",
		}, []string{"frequency"}),
		ChargeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "paylane_schedule_charge_seconds",
			Help:    "Latency of the payment collaborator during run confirmation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
