package scheduler

import "github.com/stateforge/iosts-refine/internal/primitives"

// Recorder observes scheduler activity. It is called synchronously from
// inside Tick at the five points below — never from a spawned goroutine,
// since §5 forbids suspension points inside Tick's body. The zero Recorder
// (noopRecorder) does nothing; internal/telemetry supplies the zap- and
// prometheus-backed implementation actually wired into cmd/refine-engine.
type Recorder interface {
	// SystemActivated is called when CurrentSystem transitions from nil to
	// sys (the refinement scope narrows to sys alone).
	SystemActivated(name string)
	// SystemDeactivated is called when a firing returns sys to its initial
	// state and CurrentSystem is cleared back to nil.
	SystemDeactivated(name string)
	// TransitionFired is called after every successful FireReactive or
	// FireProactive, naming the owning system and the transition label.
	TransitionFired(systemName, label string)
	// RefinementMissing is called when Phase I dequeues a model input with
	// no enabled reactive transition in scope, immediately before the
	// ErrorAction is handed to SendModelOutput.
	RefinementMissing(kind primitives.ActionKind)
	// EventDiscarded is called when Phase E dequeues a system event with no
	// enabled reactive transition in scope.
	EventDiscarded(kind primitives.ActionKind)
}

type noopRecorder struct{}

func (noopRecorder) SystemActivated(string)                  {}
func (noopRecorder) SystemDeactivated(string)                {}
func (noopRecorder) TransitionFired(string, string)          {}
func (noopRecorder) RefinementMissing(primitives.ActionKind) {}
func (noopRecorder) EventDiscarded(primitives.ActionKind)    {}
