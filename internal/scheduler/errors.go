// Package scheduler implements the refinement scheduler: the orchestration
// algorithm dispatching model inputs and system events across a set of
// registered IOSTS instances, firing proactive transitions, enforcing the
// atomic-refinement invariant, and re-evaluating to a fixed point after
// every step.
//
// Like internal/core and internal/primitives, the scheduler itself is
// stdlib-only. Structured logging and metrics are wired in from
// internal/telemetry through the Recorder interface (see recorder.go), and
// a declarative config loader lives in internal/config — neither is a
// dependency of this package.
package scheduler

import "github.com/stateforge/iosts-refine/internal/primitives"

// ErrorActionKind is the well-known ActionKind of the model output the
// scheduler itself synthesizes on RefinementMissing (§4.3.1 Phase I). It is
// always accepted by SendModelOutput regardless of the registered
// ModelOutputs filter set, since it is the engine's own built-in signal
// and is never produced by a user-defined IOSTS transition.
const ErrorActionKind primitives.ActionKind = "$RefinementError"

// NewErrorAction builds the ErrorAction model output sent to the runner
// when Phase-I finds no enabled reactive transition for a dequeued model
// input (§4.3.4, RefinementMissing).
func NewErrorAction(reason string) primitives.ModelAction {
	return primitives.NewModelAction(ErrorActionKind, "ErrorAction", map[string]primitives.Value{
		"reason": primitives.StringValue(reason),
	})
}
