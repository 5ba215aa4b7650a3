package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	WindowsCreated  prometheus.Counter
	SlotValidations *prometheus.CounterVec
	MonthCache      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WindowsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "paylane_calendar_windows_created_total",
			Help: "Blackout windows created by administrators.",
		}),
		SlotValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_calendar_slot_validations_total",
			Help: "Slot validations by outcome.",
		}, []string{"outcome"}),
		MonthCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_calendar_month_cache_total",
			Help: "Month grid cache lookups by result.",
		}, []string{"result"}),
	}
}
