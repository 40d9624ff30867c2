// Package adapter is the boundary between the refinement scheduler and the
// outside world: a model-input/output transport to the test runner, and a
// system-command/event transport to the system under test. It is grounded
// on the teacher engine's internal/extensibility package — a
// ChannelEventSource feeding events in, an ActionRunner dispatching
// actions out — generalized from a single in-process event channel to two
// independent wire-format boundaries.
package adapter

import (
	"fmt"
	"log"

	"github.com/stateforge/iosts-refine/internal/primitives"
	"github.com/stateforge/iosts-refine/internal/scheduler"
)

// TorXakisAction is the wire shape exchanged with the runner transport: a
// channel name plus Data, the self-contained textual encoding
// primitives.Serialize produces (leading type-name token, tab, fields) and
// primitives.Deserialize consumes directly. Type mirrors the action's type
// name for transports that want to route on it without parsing Data.
type TorXakisAction struct {
	Channel string
	Type    string
	Data    string
}

// RunnerTransport is the consumed interface to the model-based test
// runner: Recv blocks for the next model input (or returns an error, e.g.
// on transport close), Send delivers a model output.
type RunnerTransport interface {
	Recv() (TorXakisAction, error)
	Send(TorXakisAction) error
}

// ISystemAction is the wire shape exchanged with the system under test.
type ISystemAction struct {
	Command string
	Payload any
}

// SystemSink is the consumed interface to the system under test: Execute
// delivers a system command, Events returns a channel of system events the
// adapter forwards into the scheduler.
type SystemSink interface {
	Execute(ISystemAction) error
	Events() <-chan ISystemAction
}

// Adapter wires a Scheduler to a RunnerTransport and a SystemSink,
// translating between the wire shapes above and the scheduler's internal
// ModelAction/SystemAction vocabulary.
type Adapter struct {
	sched    *scheduler.Scheduler
	runner   RunnerTransport
	sut      SystemSink
	registry *primitives.ActionRegistry
	stop     chan struct{}
}

// New builds an Adapter. registry supplies the ModelAction constructors
// Deserialize needs to recover model inputs off the wire.
func New(sched *scheduler.Scheduler, runner RunnerTransport, sut SystemSink, registry *primitives.ActionRegistry) *Adapter {
	return &Adapter{
		sched:    sched,
		runner:   runner,
		sut:      sut,
		registry: registry,
		stop:     make(chan struct{}),
	}
}

// SendModelOutput implements scheduler.ModelOutputSink: it serializes a
// model output and hands it to the runner transport.
func (a *Adapter) SendModelOutput(m primitives.ModelAction) error {
	wire := TorXakisAction{
		Channel: string(m.ActionKind()),
		Type:    m.TypeName(),
		Data:    primitives.Serialize(m),
	}
	return a.runner.Send(wire)
}

// ExecuteSystemCommand implements scheduler.SystemCommandSink: it unwraps
// a SystemAction's opaque payload and executes it against the SUT.
func (a *Adapter) ExecuteSystemCommand(c primitives.SystemAction) error {
	cmd, ok := c.Payload().(ISystemAction)
	if !ok {
		return primitives.NewError(primitives.BadArgument, "Adapter.ExecuteSystemCommand",
			fmt.Errorf("system action %q payload is not an ISystemAction", c.ActionKind()))
	}
	return a.sut.Execute(cmd)
}

// RunModelInputs pumps model inputs off the runner transport into the
// scheduler until Recv errors or Stop is called, calling Tick after each
// successful enqueue.
func (a *Adapter) RunModelInputs() error {
	for {
		select {
		case <-a.stop:
			return nil
		default:
		}
		wire, err := a.runner.Recv()
		if err != nil {
			return err
		}
		action, err := primitives.Deserialize(wire.Data, a.registry)
		if err != nil {
			log.Printf("adapter: dropping unrecoverable model input on channel %q: %v", wire.Channel, err)
			continue
		}
		if err := a.sched.HandleModelInput(action); err != nil {
			return err
		}
		if err := a.sched.Tick(); err != nil {
			return err
		}
	}
}

// RunSystemEvents forwards events from the SUT's event channel into the
// scheduler until the channel closes or Stop is called.
func (a *Adapter) RunSystemEvents() error {
	events := a.sut.Events()
	for {
		select {
		case <-a.stop:
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := a.sched.HandleSystemEvent(primitives.NewSystemAction(primitives.ActionKind(evt.Command), evt.Payload)); err != nil {
				return err
			}
			if err := a.sched.Tick(); err != nil {
				return err
			}
		}
	}
}

// Stop signals both run loops to return.
func (a *Adapter) Stop() {
	close(a.stop)
}
