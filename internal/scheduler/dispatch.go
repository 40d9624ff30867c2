package scheduler

import (
	"fmt"

	"github.com/stateforge/iosts-refine/internal/core"
	"github.com/stateforge/iosts-refine/internal/primitives"
)

// candidate pairs a transition with the IOSTS instance it belongs to, for
// aggregation across scope before a uniform-random pick (§4.3.3).
type candidate struct {
	sys *core.IOSTS
	t   *core.Transition
}

// scope returns the systems a phase may draw candidates from: just
// CurrentSystem if the atomic-refinement invariant has narrowed it, all
// registered systems otherwise. Called with mu held.
func (s *Scheduler) scope() []*core.IOSTS {
	if s.current != nil {
		return []*core.IOSTS{s.current}
	}
	return s.systems
}

// Tick runs the fixed-point dispatch loop: Phase P, then Phase E, then
// Phase I, stopping at the first phase that makes progress and re-running
// from Phase P afterward, until no phase makes progress and both queues
// are empty. The mutex is held for the entire call, including every
// logical re-entry (§5) — implemented as an internal loop rather than
// recursive calls, since sync.Mutex is not reentrant.
func (s *Scheduler) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked()
}

// TryTick attempts Tick without blocking. It returns false if the mutex is
// already held, whether by a concurrent Tick or by any other locked
// operation.
func (s *Scheduler) TryTick() (bool, error) {
	if !s.mu.TryLock() {
		return false, nil
	}
	defer s.mu.Unlock()
	return true, s.tickLocked()
}

func (s *Scheduler) tickLocked() error {
	for {
		progressed, err := s.step()
		if err != nil {
			return err
		}
		if progressed {
			continue
		}
		if len(s.systemEventQueue) > 0 || len(s.modelInputQueue) > 0 {
			continue
		}
		return nil
	}
}

// step evaluates Phase P, then Phase E, then Phase I, stopping at the
// first that makes progress. Called with mu held.
func (s *Scheduler) step() (bool, error) {
	if progressed, err := s.phaseP(); err != nil || progressed {
		return progressed, err
	}
	if progressed, err := s.phaseE(); err != nil || progressed {
		return progressed, err
	}
	return s.phaseI()
}

// phaseP evaluates proactive transitions across scope and fires one,
// chosen uniformly at random, if any are enabled.
func (s *Scheduler) phaseP() (bool, error) {
	var candidates []candidate
	for _, sys := range s.scope() {
		for _, t := range sys.EnabledProactive() {
			candidates = append(candidates, candidate{sys, t})
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}
	c := candidates[s.rand.Intn(len(candidates))]
	if err := s.checkActivatable(c.sys); err != nil {
		return false, err
	}
	out, err := c.sys.FireProactive(c.t)
	if err != nil {
		return false, err
	}
	s.afterFire(c.sys, c.t)
	if err := s.dispatchGenerated(out); err != nil {
		return true, err
	}
	return true, nil
}

// phaseE dequeues one system event (if any) and fires a matching reactive
// transition chosen uniformly at random, or discards the event if none
// match in scope.
func (s *Scheduler) phaseE() (bool, error) {
	if len(s.systemEventQueue) == 0 {
		return false, nil
	}
	e := s.systemEventQueue[0]
	s.systemEventQueue = s.systemEventQueue[1:]

	var candidates []candidate
	for _, sys := range s.scope() {
		for _, t := range sys.EnabledReactive(e) {
			candidates = append(candidates, candidate{sys, t})
		}
	}
	if len(candidates) == 0 {
		s.recorder.EventDiscarded(e.ActionKind())
		return false, nil
	}
	c := candidates[s.rand.Intn(len(candidates))]
	if err := s.checkActivatable(c.sys); err != nil {
		return false, err
	}
	if err := c.sys.FireReactive(e, c.t); err != nil {
		return false, err
	}
	s.afterFire(c.sys, c.t)
	return true, nil
}

// phaseI dequeues one model input (if any) and fires a matching reactive
// transition chosen uniformly at random. If none match in scope, the
// refinement has no continuation for this input: an ErrorAction is sent
// immediately so the runner does not wait, and the tick still counts as
// having made progress (the input was consumed).
func (s *Scheduler) phaseI() (bool, error) {
	if len(s.modelInputQueue) == 0 {
		return false, nil
	}
	i := s.modelInputQueue[0]
	s.modelInputQueue = s.modelInputQueue[1:]

	var candidates []candidate
	for _, sys := range s.scope() {
		for _, t := range sys.EnabledReactive(i) {
			candidates = append(candidates, candidate{sys, t})
		}
	}
	if len(candidates) == 0 {
		s.recorder.RefinementMissing(i.ActionKind())
		_ = s.sendModelOutputLocked(NewErrorAction(fmt.Sprintf("no enabled refinement for %s", i.ActionKind())))
		return true, nil
	}
	c := candidates[s.rand.Intn(len(candidates))]
	if err := s.checkActivatable(c.sys); err != nil {
		return false, err
	}
	if err := c.sys.FireReactive(i, c.t); err != nil {
		return false, err
	}
	s.afterFire(c.sys, c.t)
	return true, nil
}

// checkActivatable enforces that a candidate system belongs to the
// current atomic-refinement scope. Unreachable in normal operation since
// scope() already restricts candidate aggregation to CurrentSystem once
// set; kept as a defensive check (§4.3.2).
func (s *Scheduler) checkActivatable(sys *core.IOSTS) error {
	if s.current != nil && s.current != sys {
		return primitives.NewError(primitives.SystemNotActivatable, "Scheduler.checkActivatable",
			fmt.Errorf("system %q is not the active refinement scope", sys.Name()))
	}
	return nil
}

// afterFire maintains the atomic-refinement invariant: the first firing
// in a system narrows CurrentSystem to it; a firing that returns the
// system to its initial state clears CurrentSystem back to nil.
func (s *Scheduler) afterFire(sys *core.IOSTS, t *core.Transition) {
	s.recorder.TransitionFired(sys.Name(), t.Label)
	if sys.AtInitial() {
		if s.current == sys {
			s.recorder.SystemDeactivated(sys.Name())
		}
		s.current = nil
		return
	}
	if s.current != sys {
		s.current = sys
		s.recorder.SystemActivated(sys.Name())
	}
}

// dispatchGenerated routes a proactively generated action to the correct
// sink by its Direction. Called from inside tickLocked, so it uses the
// unlocked send variants directly rather than the exported, self-locking
// SendModelOutput/SendSystemCommand.
func (s *Scheduler) dispatchGenerated(a primitives.Action) error {
	switch a.Direction() {
	case primitives.Model:
		ma, ok := a.(primitives.ModelAction)
		if !ok {
			return primitives.NewError(primitives.BadArgument, "Scheduler.dispatchGenerated", fmt.Errorf("model-direction action does not implement ModelAction"))
		}
		return s.sendModelOutputLocked(ma)
	case primitives.System:
		sa, ok := a.(primitives.SystemAction)
		if !ok {
			return primitives.NewError(primitives.BadArgument, "Scheduler.dispatchGenerated", fmt.Errorf("system-direction action does not implement SystemAction"))
		}
		return s.sendSystemCommandLocked(sa)
	default:
		return primitives.NewError(primitives.BadArgument, "Scheduler.dispatchGenerated", fmt.Errorf("unknown direction"))
	}
}
