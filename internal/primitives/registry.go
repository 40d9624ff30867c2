package primitives

import "fmt"

// ModelActionConstructor builds a concrete ModelAction from its decoded
// field map, as produced by Deserialize.
type ModelActionConstructor func(fields map[string]Value) (ModelAction, error)

// ActionRegistry maps a model action's type-name token to the constructor
// that can rebuild it from a decoded field map. This is the engine's only
// registry: it exists purely to let Deserialize recover a concrete type
// without reflection, and carries no relationship to run persistence
// (persistence across runs is out of scope).
type ActionRegistry struct {
	ctors map[string]ModelActionConstructor
}

// NewActionRegistry creates an empty ActionRegistry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{ctors: make(map[string]ModelActionConstructor)}
}

// Register associates typeName with ctor. Re-registering the same
// typeName overwrites the previous constructor.
func (r *ActionRegistry) Register(typeName string, ctor ModelActionConstructor) error {
	if typeName == "" {
		return NewError(BadArgument, "ActionRegistry.Register", fmt.Errorf("empty type name"))
	}
	if ctor == nil {
		return NewError(BadArgument, "ActionRegistry.Register", fmt.Errorf("nil constructor"))
	}
	r.ctors[typeName] = ctor
	return nil
}

func (r *ActionRegistry) lookup(typeName string) (ModelActionConstructor, bool) {
	ctor, ok := r.ctors[typeName]
	return ctor, ok
}
