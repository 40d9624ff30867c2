// Package primitives provides the foundational data structures for the
// refinement engine: tagged variable values, the variable store, and the
// action taxonomy distinguishing model actions from system actions.
//
// All implementations use only the Go standard library (stdlib-only); the
// core engine's concurrency guarantees are provided one layer up by the
// scheduler's single lock, so nothing in this package needs its own
// synchronization.
package primitives

import "fmt"

// Kind identifies the class of error raised by the engine. Kinds are not
// exception types — every EngineError carries one and wraps the underlying
// cause, if any.
type Kind int

const (
	// BadArgument covers a nil action, an unsupported variable type, or an
	// empty variable name.
	BadArgument Kind = iota
	// TypeMismatch covers a variable get/set/clear against a differently
	// typed existing binding.
	TypeMismatch
	// UnboundVariable covers a get/clear of a variable that was never set.
	UnboundVariable
	// IllegalTransition covers firing a transition that is not a member of
	// the enabled set computed for the supplied trigger.
	IllegalTransition
	// SystemNotActivatable covers firing in a non-active IOSTS while another
	// IOSTS is the current active system.
	SystemNotActivatable
	// RefinementMissing covers Phase-I finding no enabled reactive
	// transition for a dequeued model input.
	RefinementMissing
	// IllFormedIOSTS covers an IOSTS whose reactive model transitions do not
	// consume exactly one model-action type.
	IllFormedIOSTS
)

func (k Kind) String() string {
	switch k {
	case BadArgument:
		return "BadArgument"
	case TypeMismatch:
		return "TypeMismatch"
	case UnboundVariable:
		return "UnboundVariable"
	case IllegalTransition:
		return "IllegalTransition"
	case SystemNotActivatable:
		return "SystemNotActivatable"
	case RefinementMissing:
		return "RefinementMissing"
	case IllFormedIOSTS:
		return "IllFormedIOSTS"
	default:
		return "Unknown"
	}
}

// EngineError is the concrete error type raised at every API boundary in
// this module. Op names the failing operation (e.g. "Store.Set",
// "IOSTS.FireReactive") for diagnostics.
type EngineError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is reports whether target is an *EngineError with the same Kind, so
// callers can do errors.Is(err, &EngineError{Kind: TypeMismatch}).
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an EngineError, optionally wrapping a cause.
func NewError(kind Kind, op string, cause error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Err: cause}
}
