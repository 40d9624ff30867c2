package primitives

// Store is a mapping from variable name to a typed Value. A Store is owned
// by exactly one IOSTS instance and is never shared (§4.1): every access
// happens while the scheduler holds its single dispatch-wide lock, so,
// unlike the sync.Map-backed Context this package descends from, Store
// needs no internal synchronization of its own — the concurrency guarantee
// lives one layer up, at the scheduler.
type Store struct {
	vars map[string]Value
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{vars: make(map[string]Value)}
}

// Set binds name to value. Fails if name is empty, or if name is already
// bound to a value of a different Kind. Idempotent when binding the same
// type-value pair again.
func (s *Store) Set(name string, value Value) error {
	if name == "" {
		return NewError(BadArgument, "Store.Set", nil)
	}
	if existing, ok := s.vars[name]; ok {
		if existing.Kind() != value.Kind() {
			return NewError(TypeMismatch, "Store.Set", nil)
		}
	}
	s.vars[name] = value
	return nil
}

// Get retrieves the value bound to name. Fails if unbound.
func (s *Store) Get(name string) (Value, error) {
	v, ok := s.vars[name]
	if !ok {
		return Value{}, NewError(UnboundVariable, "Store.Get", nil)
	}
	return v, nil
}

// GetKind retrieves the value bound to name, additionally failing if it is
// not of the requested kind.
func (s *Store) GetKind(name string, kind ValueKind) (Value, error) {
	v, err := s.Get(name)
	if err != nil {
		return Value{}, err
	}
	if v.Kind() != kind {
		return Value{}, NewError(TypeMismatch, "Store.GetKind", nil)
	}
	return v, nil
}

// Clear removes the binding for name. Fails if unbound.
func (s *Store) Clear(name string) error {
	if _, ok := s.vars[name]; !ok {
		return NewError(UnboundVariable, "Store.Clear", nil)
	}
	delete(s.vars, name)
	return nil
}

// Has reports whether name is currently bound.
func (s *Store) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Snapshot returns a shallow copy of the current bindings. The core and
// scheduler packages never call it; internal/config's declarative guards
// evaluate their expressions against it.
func (s *Store) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}
