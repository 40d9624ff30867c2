// Package telemetry is the engine's ambient observability stack: a zap
// structured logger, prometheus counters/gauges registered via promauto,
// uuid-tagged correlation IDs, and a scheduler.Recorder implementation
// tying all three together, plus a DOT graph exporter for an IOSTS.
//
// None of this is referenced by internal/core or internal/scheduler
// directly — they depend only on the Recorder interface those packages
// define. This package supplies the concrete implementation wired in by
// cmd/refine-engine.
package telemetry

import (
	"go.uber.org/zap"
)

// NewLogger builds the engine's structured logger. console selects a
// human-readable development encoder; otherwise JSON production encoding
// is used, matching the convention of logging console output during
// interactive runs and JSON when the engine runs under a supervisor.
func NewLogger(console bool, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if console {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}
