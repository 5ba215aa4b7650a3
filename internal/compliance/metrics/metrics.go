package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	IssuesOpened *prometheus.CounterVec
	Escalations  *prometheus.CounterVec
	Resolutions  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IssuesOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_compliance_issues_opened_total",
			Help: "Compliance issues opened by initial severity.",
		}, []string{"severity"}),
		Escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paylane_compliance_escalations_total",
			Help: "Issue escalations by target severity.",
		}, []string{"to"}),
		Resolutions: factory.NewCounter(prometheus.CounterOpts{
			Name: "paylane_compliance_resolutions_total",
			Help: "Issues resolved.",
		}),
	}
}
