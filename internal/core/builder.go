package core

import "github.com/stateforge/iosts-refine/internal/primitives"

// Builder provides a fluent API for constructing an IOSTS, in the same
// spirit as the teacher engine's MachineBuilder — but flat: IOSTS states
// have no parent/child hierarchy (§3: "State — an opaque named vertex, no
// payload beyond a name"), so there is no Compound/Parallel/Up() nesting
// here, only named states and transitions between them.
type Builder struct {
	name        string
	states      map[string]*primitives.State
	initial     string
	transitions []*Transition
	err         error
}

// NewBuilder starts building an IOSTS named name with the given initial
// state name (created lazily on first reference).
func NewBuilder(name, initial string) *Builder {
	return &Builder{
		name:    name,
		states:  make(map[string]*primitives.State),
		initial: initial,
	}
}

func (b *Builder) state(name string) *primitives.State {
	s, ok := b.states[name]
	if !ok {
		s = primitives.NewState(name)
		b.states[name] = s
	}
	return s
}

// Reactive adds a reactive transition from -> to, keyed on kind/dir, with
// the given guard and update (either may be nil).
func (b *Builder) Reactive(from, to string, kind primitives.ActionKind, dir primitives.Direction, guard GuardFunc, update UpdateFunc) *Builder {
	t, err := NewReactive(b.state(from), b.state(to), kind, dir, guard, update)
	if err != nil {
		b.err = err
		return b
	}
	t.Label = from + "->" + to
	b.transitions = append(b.transitions, t)
	return b
}

// Proactive adds a proactive transition from -> to, keyed on kind/dir,
// with the given guard, generate, and update (guard and update may be
// nil; generate is required).
func (b *Builder) Proactive(from, to string, kind primitives.ActionKind, dir primitives.Direction, guard ProactiveGuardFunc, generate GenerateFunc, update UpdateFunc) *Builder {
	t, err := NewProactive(b.state(from), b.state(to), kind, dir, guard, generate, update)
	if err != nil {
		b.err = err
		return b
	}
	t.Label = from + "->" + to
	b.transitions = append(b.transitions, t)
	return b
}

// Build finalizes and validates the IOSTS.
func (b *Builder) Build() (*IOSTS, error) {
	if b.err != nil {
		return nil, b.err
	}
	states := make([]*primitives.State, 0, len(b.states))
	for _, s := range b.states {
		states = append(states, s)
	}
	return NewIOSTS(b.name, states, b.state(b.initial), b.transitions)
}
