package scheduler

import (
	"fmt"
	"sync"

	"github.com/stateforge/iosts-refine/internal/core"
	"github.com/stateforge/iosts-refine/internal/primitives"
)

// ModelOutputSink receives model outputs produced by a firing (serialized
// and handed to the runner transport by the adapter boundary).
type ModelOutputSink interface {
	SendModelOutput(primitives.ModelAction) error
}

// SystemCommandSink receives system commands produced by a firing,
// delivered to the system-under-test.
type SystemCommandSink interface {
	ExecuteSystemCommand(primitives.SystemAction) error
}

// Scheduler is the refinement scheduler (§4, §5): a registered set of
// IOSTS instances, the cached action-type filter sets derived from their
// transitions, two FIFO queues, the CurrentSystem pointer implementing the
// atomic-refinement invariant, and a single mutex guarding all of it.
//
// Every exported method takes the same mutex; none suspends while holding
// it (§5) — no channel sends, no I/O, no blocking calls appear inside a
// locked section. Model outputs and system commands are handed to sinks
// synchronously, so a slow or blocking sink implementation does stall the
// scheduler; callers wanting asynchronous delivery must buffer on their
// side of the sink interface.
type Scheduler struct {
	mu sync.Mutex

	systems []*core.IOSTS // registration order; scope/selection order only, not priority
	current *core.IOSTS

	modelInputs    map[primitives.ActionKind]struct{}
	modelOutputs   map[primitives.ActionKind]struct{}
	systemCommands map[primitives.ActionKind]struct{}
	systemEvents   map[primitives.ActionKind]struct{}

	modelInputQueue  []primitives.ModelAction
	systemEventQueue []primitives.SystemAction

	outputSink  ModelOutputSink
	commandSink SystemCommandSink
	recorder    Recorder
	rand        RandSource
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithModelOutputSink registers the runner-transport sink for model
// outputs.
func WithModelOutputSink(sink ModelOutputSink) Option {
	return func(s *Scheduler) { s.outputSink = sink }
}

// WithSystemCommandSink registers the system-under-test sink for system
// commands.
func WithSystemCommandSink(sink SystemCommandSink) Option {
	return func(s *Scheduler) { s.commandSink = sink }
}

// WithRecorder installs a telemetry Recorder. Default is a no-op.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithRandSource installs a RandSource, e.g. NewSeededRand for
// reproducible tests. Default is time-seeded math/rand.
func WithRandSource(r RandSource) Option {
	return func(s *Scheduler) { s.rand = r }
}

// New constructs an empty Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		modelInputs:    make(map[primitives.ActionKind]struct{}),
		modelOutputs:   make(map[primitives.ActionKind]struct{}),
		systemCommands: make(map[primitives.ActionKind]struct{}),
		systemEvents:   make(map[primitives.ActionKind]struct{}),
		recorder:       noopRecorder{},
		rand:           defaultRand(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddSystem registers sys and reindexes the filter sets. Returns false if
// sys was already registered (idempotent no-op).
func (s *Scheduler) AddSystem(sys *core.IOSTS) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.systems {
		if r == sys {
			return false
		}
	}
	s.systems = append(s.systems, sys)
	s.reindex()
	return true
}

// RemoveSystem deregisters sys and reindexes the filter sets. If sys was
// the active CurrentSystem, the atomic-refinement scope is cleared back to
// nil rather than left dangling. Returns false if sys was not registered.
func (s *Scheduler) RemoveSystem(sys *core.IOSTS) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.systems {
		if r == sys {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.systems = append(s.systems[:idx], s.systems[idx+1:]...)
	if s.current == sys {
		s.current = nil
	}
	s.reindex()
	return true
}

// reindex rebuilds the four cached filter sets from scratch across all
// registered systems (§3, invariant I3). Called with mu held.
func (s *Scheduler) reindex() {
	for k := range s.modelInputs {
		delete(s.modelInputs, k)
	}
	for k := range s.modelOutputs {
		delete(s.modelOutputs, k)
	}
	for k := range s.systemCommands {
		delete(s.systemCommands, k)
	}
	for k := range s.systemEvents {
		delete(s.systemEvents, k)
	}
	for _, sys := range s.systems {
		for _, t := range sys.Transitions() {
			switch {
			case t.Dir == primitives.Model && t.Variant == core.Reactive:
				s.modelInputs[t.Kind] = struct{}{}
			case t.Dir == primitives.Model && t.Variant == core.Proactive:
				s.modelOutputs[t.Kind] = struct{}{}
			case t.Dir == primitives.System && t.Variant == core.Reactive:
				s.systemEvents[t.Kind] = struct{}{}
			case t.Dir == primitives.System && t.Variant == core.Proactive:
				s.systemCommands[t.Kind] = struct{}{}
			}
		}
	}
}

// HandleModelInput enqueues a on the model-input queue if its ActionKind
// is a member of the ModelInputs filter set; otherwise it is silently
// dropped (§4.3, type-filtered enqueue).
func (s *Scheduler) HandleModelInput(a primitives.ModelAction) error {
	if a == nil {
		return primitives.NewError(primitives.BadArgument, "Scheduler.HandleModelInput", fmt.Errorf("nil action"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modelInputs[a.ActionKind()]; !ok {
		return nil
	}
	s.modelInputQueue = append(s.modelInputQueue, a)
	return nil
}

// HandleSystemEvent enqueues e on the system-event queue if its
// ActionKind is a member of the SystemEvents filter set; otherwise it is
// silently dropped.
func (s *Scheduler) HandleSystemEvent(e primitives.SystemAction) error {
	if e == nil {
		return primitives.NewError(primitives.BadArgument, "Scheduler.HandleSystemEvent", fmt.Errorf("nil action"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.systemEvents[e.ActionKind()]; !ok {
		return nil
	}
	s.systemEventQueue = append(s.systemEventQueue, e)
	return nil
}

// SendModelOutput delivers o to the registered ModelOutputSink. o is
// type-filtered identically to HandleModelInput against the ModelOutputs
// set, except for the engine's own ErrorActionKind, which is always
// accepted. If no sink is registered, o is dropped.
//
// This is one of the single-lock operations of §5: it is exported so an
// embedder may call it directly (e.g. to inject a model output outside of
// a Tick), which is exactly the case a bare unlocked read of
// s.modelOutputs would race against a concurrent AddSystem/RemoveSystem
// reindex. sendModelOutputLocked is the unlocked body, used by dispatch.go
// from inside an already-locked Tick, where taking s.mu again would
// deadlock (sync.Mutex is not reentrant).
func (s *Scheduler) SendModelOutput(o primitives.ModelAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendModelOutputLocked(o)
}

func (s *Scheduler) sendModelOutputLocked(o primitives.ModelAction) error {
	if o == nil {
		return primitives.NewError(primitives.BadArgument, "Scheduler.SendModelOutput", fmt.Errorf("nil action"))
	}
	if o.ActionKind() != ErrorActionKind {
		if _, ok := s.modelOutputs[o.ActionKind()]; !ok {
			return nil
		}
	}
	if s.outputSink == nil {
		return nil
	}
	return s.outputSink.SendModelOutput(o)
}

// SendSystemCommand delivers c to the registered SystemCommandSink,
// type-filtered against the SystemCommands set. If no sink is registered,
// c is dropped. See SendModelOutput for why this takes s.mu while
// sendSystemCommandLocked (used from inside Tick) does not.
func (s *Scheduler) SendSystemCommand(c primitives.SystemAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendSystemCommandLocked(c)
}

func (s *Scheduler) sendSystemCommandLocked(c primitives.SystemAction) error {
	if c == nil {
		return primitives.NewError(primitives.BadArgument, "Scheduler.SendSystemCommand", fmt.Errorf("nil action"))
	}
	if _, ok := s.systemCommands[c.ActionKind()]; !ok {
		return nil
	}
	if s.commandSink == nil {
		return nil
	}
	return s.commandSink.ExecuteSystemCommand(c)
}

// CurrentSystem returns the IOSTS currently holding the atomic-refinement
// scope, or nil if none is active.
func (s *Scheduler) CurrentSystem() *core.IOSTS {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// RegisteredSystems returns a snapshot of the registered systems in
// registration order.
func (s *Scheduler) RegisteredSystems() []*core.IOSTS {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.IOSTS, len(s.systems))
	copy(out, s.systems)
	return out
}

// SetModelOutputSink wires (or replaces) the model-output sink after
// construction. This two-phase wiring exists because an adapter.Adapter
// is itself both a sink and a holder of *Scheduler — the two cannot be
// constructed in a single expression.
func (s *Scheduler) SetModelOutputSink(sink ModelOutputSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputSink = sink
}

// SetSystemCommandSink wires (or replaces) the system-command sink after
// construction, for the same reason as SetModelOutputSink.
func (s *Scheduler) SetSystemCommandSink(sink SystemCommandSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commandSink = sink
}
