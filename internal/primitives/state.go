package primitives

// State is an opaque named vertex in an IOSTS. Equality is by identity
// (pointer equality), never by Name — Name exists solely for diagnostics
// such as log fields and DOT export, and two distinct States may legally
// share a Name.
type State struct {
	Name string
}

// NewState creates a new State with the given diagnostic name.
func NewState(name string) *State {
	return &State{Name: name}
}
