package reactive

// Derived is a value computed from a store's fields and owned by the store.
//
// Unlike a Selector, reading a Derived inside a computation does not
// subscribe the reader to the Derived itself. The reader inherits the
// Derived's own dependencies instead, so it recomputes whenever any field
// the Derived read changes, even if the derived value comes out equal.
// Use a Selector when equal results should stop propagation; use a Derived
// when a store exposes a computed property that readers treat like one of
// its fields.
type Derived[T any] struct {
	sel   *Selector[T]
	store *Store
}

// DeclareDerived creates a derived value on s. derive runs once now and
// again whenever a source it read changes.
func DeclareDerived[T any](s *Store, name string, derive func() T) *Derived[T] {
	return &Derived[T]{
		sel:   NewSelector(s.t, derive, WithName(s.name+"."+name)),
		store: s,
	}
}

// ID returns the source id of the underlying computation.
func (d *Derived[T]) ID() SourceID {
	return d.sel.ID()
}

// Name returns the derived value's label.
func (d *Derived[T]) Name() string {
	return d.sel.Name()
}

// Store returns the owning store.
func (d *Derived[T]) Store() *Store {
	return d.store
}

// Get returns the current value and, inside a tracked computation, records
// every source the derived value last read as a dependency of the innermost
// computation.
func (d *Derived[T]) Get() T {
	s := d.sel
	if s.checkSelfRead() {
		return s.cached()
	}
	s.t.pull(s.n)
	for _, id := range s.t.table.lastDeps(s.n.id) {
		s.t.recordRead(id)
	}
	return s.cached()
}

// Peek returns the current value without recording dependencies.
func (d *Derived[T]) Peek() T {
	return d.sel.Value()
}

// Deps returns the sources the derived value read on its last run.
func (d *Derived[T]) Deps() []SourceID {
	return d.sel.t.table.lastDeps(d.sel.n.id)
}
