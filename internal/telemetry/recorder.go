package telemetry

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stateforge/iosts-refine/internal/primitives"
)

// SchedulerRecorder implements scheduler.Recorder with structured logging
// and prometheus metrics. A fresh correlation ID is minted for every
// activation (§4.3's recorder hook points are called synchronously inside
// Tick, so the ID stays attached to the whole refinement episode without
// needing a context.Context thread through the scheduler).
type SchedulerRecorder struct {
	log     *zap.Logger
	metrics *Metrics
	corrID  string
}

// NewSchedulerRecorder builds a recorder logging to log and updating
// metrics.
func NewSchedulerRecorder(log *zap.Logger, metrics *Metrics) *SchedulerRecorder {
	return &SchedulerRecorder{log: log, metrics: metrics}
}

func (r *SchedulerRecorder) SystemActivated(name string) {
	r.corrID = uuid.NewString()
	r.metrics.systemsActivated.Inc()
	r.metrics.activeSystems.Set(1)
	r.log.Info("system activated", zap.String("system", name), zap.String("correlation_id", r.corrID))
}

func (r *SchedulerRecorder) SystemDeactivated(name string) {
	r.metrics.activeSystems.Set(0)
	r.log.Info("system deactivated", zap.String("system", name), zap.String("correlation_id", r.corrID))
	r.corrID = ""
}

func (r *SchedulerRecorder) TransitionFired(systemName, label string) {
	r.metrics.transitionsFired.WithLabelValues(systemName).Inc()
	r.log.Debug("transition fired", zap.String("system", systemName), zap.String("transition", label), zap.String("correlation_id", r.corrID))
}

func (r *SchedulerRecorder) RefinementMissing(kind primitives.ActionKind) {
	r.metrics.refinementMissing.WithLabelValues(string(kind)).Inc()
	r.log.Warn("refinement missing", zap.String("kind", string(kind)), zap.String("correlation_id", r.corrID))
}

func (r *SchedulerRecorder) EventDiscarded(kind primitives.ActionKind) {
	r.metrics.eventsDiscarded.WithLabelValues(string(kind)).Inc()
	r.log.Warn("event discarded", zap.String("kind", string(kind)), zap.String("correlation_id", r.corrID))
}
