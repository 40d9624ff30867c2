package primitives

// ActionKind is a stable identifier attached to every action and every
// transition's keyed action type. The source this engine is descended from
// relied on language-level reflection (the Go dynamic type of an event
// payload) to index transitions; per design note, this is replaced
// everywhere with an explicit, interned identifier so that filter-set
// membership and candidate matching never need a type switch or
// reflection.
type ActionKind string

// Direction distinguishes a model action (the test runner's vocabulary)
// from a system action (the SUT's vocabulary).
type Direction int

const (
	// Model actions are exchanged with the test runner.
	Model Direction = iota
	// System actions are exchanged with the system under test.
	System
)

// Action is the minimal contract shared by model and system actions: a
// stable type identity usable as a map key.
type Action interface {
	ActionKind() ActionKind
	Direction() Direction
}

// ModelAction is an action in the vocabulary of the test runner. Its
// payload is restricted to the primitive set {boolean, integer, string}
// and must be both serializable and reconstructible without reflection.
type ModelAction interface {
	Action
	// TypeName returns the stable type-name token used as the leading
	// token of Serialize's textual encoding and looked up by Deserialize.
	TypeName() string
	// Fields returns the action's payload fields by name. Implementations
	// must return the same field set on every call (no hidden mutation).
	Fields() map[string]Value
}

// SystemAction is an action in the vocabulary of the SUT. Its payload is
// opaque to the engine; only its ActionKind is used for dispatch.
type SystemAction interface {
	Action
	// Payload returns the opaque SUT-specific payload, never inspected by
	// the engine itself.
	Payload() any
}

// baseModelAction is an embeddable helper for concrete ModelAction
// implementations built from a field map (e.g. ones reconstructed via
// Deserialize, or ones defined by the declarative config loader).
type baseModelAction struct {
	kind     ActionKind
	typeName string
	fields   map[string]Value
}

func (a *baseModelAction) ActionKind() ActionKind { return a.kind }
func (a *baseModelAction) Direction() Direction    { return Model }
func (a *baseModelAction) TypeName() string        { return a.typeName }
func (a *baseModelAction) Fields() map[string]Value {
	out := make(map[string]Value, len(a.fields))
	for k, v := range a.fields {
		out[k] = v
	}
	return out
}

// NewModelAction builds a generic ModelAction from a type-name token, an
// ActionKind, and a field map. Most IOSTS-specific model actions will
// instead define their own concrete Go type for compile-time field access;
// this constructor exists for the declarative config loader and for
// Deserialize, where the concrete Go type is not known statically.
func NewModelAction(kind ActionKind, typeName string, fields map[string]Value) ModelAction {
	clone := make(map[string]Value, len(fields))
	for k, v := range fields {
		clone[k] = v
	}
	return &baseModelAction{kind: kind, typeName: typeName, fields: clone}
}

// genericSystemAction is the minimal SystemAction implementation for
// embedders that have no richer Go type for a given system action.
type genericSystemAction struct {
	kind    ActionKind
	payload any
}

func (a *genericSystemAction) ActionKind() ActionKind { return a.kind }
func (a *genericSystemAction) Direction() Direction    { return System }
func (a *genericSystemAction) Payload() any            { return a.payload }

// NewSystemAction builds a generic SystemAction wrapping an opaque payload.
func NewSystemAction(kind ActionKind, payload any) SystemAction {
	return &genericSystemAction{kind: kind, payload: payload}
}
