package core

import (
	"fmt"

	"github.com/stateforge/iosts-refine/internal/primitives"
)

// IOSTS is a single Input-Output Symbolic Transition System instance: a
// finite set of states, an initial and current state, its transitions, and
// the local variable store they share.
//
// Lifetime: created at configuration time via NewIOSTS, registered with a
// scheduler, destroyed when deregistered (§3).
type IOSTS struct {
	name        string
	states      map[*primitives.State]struct{}
	initial     *primitives.State
	current     *primitives.State
	transitions []*Transition
	store       *primitives.Store
	modelKind   primitives.ActionKind
}

// NewIOSTS validates and constructs an IOSTS. Construction fails
// (BadArgument) if the initial state or any transition endpoint is not a
// member of states, and fails (IllFormedIOSTS) unless exactly one
// model-action type is consumed by its reactive model transitions (the
// model input this IOSTS refines; model outputs produced by proactive
// transitions are not counted) — the engine's design note
// treats that as a hard precondition to reject at registration, rather
// than the "warn and index position zero" behavior of an ill-formed
// construction.
func NewIOSTS(name string, states []*primitives.State, initial *primitives.State, transitions []*Transition) (*IOSTS, error) {
	set := make(map[*primitives.State]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	if _, ok := set[initial]; !ok {
		return nil, primitives.NewError(primitives.BadArgument, "NewIOSTS", fmt.Errorf("initial state not a member of states"))
	}

	modelKinds := make(map[primitives.ActionKind]struct{})
	for _, t := range transitions {
		if _, ok := set[t.From]; !ok {
			return nil, primitives.NewError(primitives.BadArgument, "NewIOSTS", fmt.Errorf("transition From %q not a member of states", t.From.Name))
		}
		if _, ok := set[t.To]; !ok {
			return nil, primitives.NewError(primitives.BadArgument, "NewIOSTS", fmt.Errorf("transition To %q not a member of states", t.To.Name))
		}
		if t.Dir == primitives.Model && t.Variant == Reactive {
			modelKinds[t.Kind] = struct{}{}
		}
	}
	if len(modelKinds) != 1 {
		return nil, primitives.NewError(primitives.IllFormedIOSTS, "NewIOSTS", fmt.Errorf("IOSTS %q consumes %d distinct model-input types, want exactly 1", name, len(modelKinds)))
	}
	var modelKind primitives.ActionKind
	for k := range modelKinds {
		modelKind = k
	}

	return &IOSTS{
		name:        name,
		states:      set,
		initial:     initial,
		current:     initial,
		transitions: append([]*Transition(nil), transitions...),
		store:       primitives.NewStore(),
		modelKind:   modelKind,
	}, nil
}

// Name returns the IOSTS's diagnostic name.
func (m *IOSTS) Name() string { return m.name }

// ModelActionType returns the unique model-action type this IOSTS refines.
func (m *IOSTS) ModelActionType() primitives.ActionKind { return m.modelKind }

// CurrentState returns the current state.
func (m *IOSTS) CurrentState() *primitives.State { return m.current }

// InitialState returns the initial state.
func (m *IOSTS) InitialState() *primitives.State { return m.initial }

// AtInitial reports whether the current state is the initial state.
func (m *IOSTS) AtInitial() bool { return m.current == m.initial }

// Store returns the IOSTS's variable store. The store is owned by exactly
// this IOSTS and is never shared (§4.1) — callers outside the scheduler's
// single lock must not use this concurrently with a Tick.
func (m *IOSTS) Store() *primitives.Store { return m.store }

// Transitions returns the IOSTS's transition set (read-only use expected).
func (m *IOSTS) Transitions() []*Transition { return m.transitions }

// EnabledReactive returns the reactive transitions whose source is the
// current state, whose keyed action type matches action's ActionKind
// exactly, and whose guard evaluates true.
func (m *IOSTS) EnabledReactive(action primitives.Action) []*Transition {
	var out []*Transition
	for _, t := range m.transitions {
		if t.Variant != Reactive || t.From != m.current {
			continue
		}
		if t.Kind != action.ActionKind() || t.Dir != action.Direction() {
			continue
		}
		if t.Guard(m.store, action) {
			out = append(out, t)
		}
	}
	return out
}

// EnabledProactive returns the proactive transitions whose source is the
// current state and whose guard evaluates true.
func (m *IOSTS) EnabledProactive() []*Transition {
	var out []*Transition
	for _, t := range m.transitions {
		if t.Variant != Proactive || t.From != m.current {
			continue
		}
		if t.ProGuard(m.store) {
			out = append(out, t)
		}
	}
	return out
}

// isEnabledReactive reports whether t is currently a member of
// EnabledReactive(action), by identity.
func (m *IOSTS) isEnabledReactive(action primitives.Action, t *Transition) bool {
	for _, c := range m.EnabledReactive(action) {
		if c == t {
			return true
		}
	}
	return false
}

func (m *IOSTS) isEnabledProactive(t *Transition) bool {
	for _, c := range m.EnabledProactive() {
		if c == t {
			return true
		}
	}
	return false
}

// FireReactive fires t, which must be a member of EnabledReactive(action).
// Effect: t.Update(store, action); current state becomes t.To.
func (m *IOSTS) FireReactive(action primitives.Action, t *Transition) error {
	if !m.isEnabledReactive(action, t) {
		return primitives.NewError(primitives.IllegalTransition, "IOSTS.FireReactive", fmt.Errorf("transition not in enabled set for action %q", action.ActionKind()))
	}
	t.runUpdate(m.store, action)
	m.current = t.To
	return nil
}

// FireProactive fires t, which must be a member of EnabledProactive().
// Effect, in order: a = t.Generate(store); t.Update(store, a); current
// state becomes t.To. The order is observable — update sees the generated
// action (§4.2).
func (m *IOSTS) FireProactive(t *Transition) (primitives.Action, error) {
	if !m.isEnabledProactive(t) {
		return nil, primitives.NewError(primitives.IllegalTransition, "IOSTS.FireProactive", fmt.Errorf("transition not in enabled set"))
	}
	a := t.Generate(m.store)
	t.runUpdate(m.store, a)
	m.current = t.To
	return a, nil
}
