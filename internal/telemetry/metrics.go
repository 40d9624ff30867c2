package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors the recorder updates on every
// dispatch event. Registered against a caller-supplied Registerer so
// tests can use a throwaway prometheus.NewRegistry() instead of the
// global default.
type Metrics struct {
	transitionsFired  *prometheus.CounterVec
	systemsActivated  prometheus.Counter
	refinementMissing *prometheus.CounterVec
	eventsDiscarded   *prometheus.CounterVec
	activeSystems     prometheus.Gauge
}

// NewMetrics registers the engine's metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transitionsFired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iosts_refine_transitions_fired_total",
			Help: "Transitions fired, by owning IOSTS name.",
		}, []string{"system"}),
		systemsActivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "iosts_refine_systems_activated_total",
			Help: "Times the atomic-refinement scope narrowed to a single IOSTS.",
		}),
		refinementMissing: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iosts_refine_refinement_missing_total",
			Help: "Model inputs with no enabled reactive transition in scope, by action kind.",
		}, []string{"kind"}),
		eventsDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iosts_refine_events_discarded_total",
			Help: "System events discarded with no enabled reactive transition in scope, by action kind.",
		}, []string{"kind"}),
		activeSystems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iosts_refine_active_systems",
			Help: "1 if an IOSTS currently holds the atomic-refinement scope, else 0.",
		}),
	}
}
