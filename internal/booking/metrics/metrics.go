package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsBooked *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsBooked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_booking_sessions_booked_total",
			Help: "Advisory sessions booked by kind.",
		}, []string{"kind"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_booking_transitions_total",
			Help: "Session lifecycle transitions by action.",
		}, []string{"action"}),
	}
}
