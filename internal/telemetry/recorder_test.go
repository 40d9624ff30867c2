package telemetry_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stateforge/iosts-refine/internal/primitives"
	"github.com/stateforge/iosts-refine/internal/scheduler"
	"github.com/stateforge/iosts-refine/internal/telemetry"
)

func TestSchedulerRecorderSatisfiesSchedulerInterface(t *testing.T) {
	log := zaptest.NewLogger(t)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	rec := telemetry.NewSchedulerRecorder(log, metrics)

	var _ scheduler.Recorder = rec

	rec.SystemActivated("happy")
	rec.TransitionFired("happy", "S0->S1")
	rec.RefinementMissing(primitives.ActionKind("InputA"))
	rec.EventDiscarded(primitives.ActionKind("SysEvt"))
	rec.SystemDeactivated("happy")
}

func TestNewLoggerBuildsConsoleAndProductionConfigs(t *testing.T) {
	console, err := telemetry.NewLogger(true, "debug")
	require.NoError(t, err)
	assert.NotNil(t, console)

	prod, err := telemetry.NewLogger(false, "info")
	require.NoError(t, err)
	assert.NotNil(t, prod)
}
