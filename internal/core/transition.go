// Package core implements the IOSTS semantics — states, guarded
// transitions, and the variable store they share — that the refinement
// scheduler dispatches across. Like internal/primitives, it is
// stdlib-only: the scheduler's single-lock discipline (see
// internal/scheduler) is what makes that safe, not anything in this
// package.
package core

import (
	"github.com/stateforge/iosts-refine/internal/primitives"
)

// GuardFunc is a reactive transition's guard: a predicate over the current
// variable store and the incoming action.
type GuardFunc func(store *primitives.Store, action primitives.Action) bool

// ProactiveGuardFunc is a proactive transition's guard: a predicate over
// the variable store alone.
type ProactiveGuardFunc func(store *primitives.Store) bool

// GenerateFunc produces a proactive transition's outgoing action from the
// variable store.
type GenerateFunc func(store *primitives.Store) primitives.Action

// UpdateFunc may read and mutate the owning IOSTS's variable store. For a
// reactive transition it observes the incoming action; for a proactive
// transition it observes the action GenerateFunc just produced (update
// runs after generate, so it sees the generated action — this ordering is
// observable, per §4.2).
type UpdateFunc func(store *primitives.Store, action primitives.Action)

// Variant distinguishes a reactive transition (triggered by an incoming
// action) from a proactive one (self-triggered, producing an action).
type Variant int

const (
	// Reactive transitions consume an incoming action and carry a
	// GuardFunc over (store, action).
	Reactive Variant = iota
	// Proactive transitions carry a ProactiveGuardFunc over the store
	// alone and a GenerateFunc that produces the outgoing action.
	Proactive
)

// Transition is an edge from one state to another, keyed on an action
// type. The four combinations of {Reactive, Proactive} x
// {primitives.Model, primitives.System} partition the scheduler's cached
// filter sets (§3, invariant I3).
type Transition struct {
	From, To   *primitives.State
	Kind       primitives.ActionKind
	Dir        primitives.Direction
	Variant    Variant
	Update     UpdateFunc
	Guard      GuardFunc           // set iff Variant == Reactive
	ProGuard   ProactiveGuardFunc  // set iff Variant == Proactive
	Generate   GenerateFunc        // set iff Variant == Proactive
	Label      string              // diagnostic only
}

// NewReactive builds a reactive transition. update may be nil (no-op).
func NewReactive(from, to *primitives.State, kind primitives.ActionKind, dir primitives.Direction, guard GuardFunc, update UpdateFunc) (*Transition, error) {
	if from == nil || to == nil {
		return nil, primitives.NewError(primitives.BadArgument, "NewReactive", nil)
	}
	if guard == nil {
		guard = func(*primitives.Store, primitives.Action) bool { return true }
	}
	return &Transition{
		From: from, To: to, Kind: kind, Dir: dir,
		Variant: Reactive, Guard: guard, Update: update,
	}, nil
}

// NewProactive builds a proactive transition. update may be nil (no-op).
func NewProactive(from, to *primitives.State, kind primitives.ActionKind, dir primitives.Direction, guard ProactiveGuardFunc, generate GenerateFunc, update UpdateFunc) (*Transition, error) {
	if from == nil || to == nil {
		return nil, primitives.NewError(primitives.BadArgument, "NewProactive", nil)
	}
	if generate == nil {
		return nil, primitives.NewError(primitives.BadArgument, "NewProactive", nil)
	}
	if guard == nil {
		guard = func(*primitives.Store) bool { return true }
	}
	return &Transition{
		From: from, To: to, Kind: kind, Dir: dir,
		Variant: Proactive, ProGuard: guard, Generate: generate, Update: update,
	}, nil
}

func (t *Transition) runUpdate(store *primitives.Store, action primitives.Action) {
	if t.Update != nil {
		t.Update(store, action)
	}
}
