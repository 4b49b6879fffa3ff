package reactive

import "sync"

// Field is a single trackable cell. Reading it with Get inside a tracked
// computation records it as a dependency of that computation; writing a
// different value invalidates every selector subscribed to it and clears
// its subscriber set (selectors re-subscribe on their next run).
//
// A field either stands alone (NewField) or belongs to a Store (Declare).
// Store-owned fields may only be written inside that store's Update.
type Field[T any] struct {
	t     *Tracker
	id    SourceID
	name  string
	store *Store

	mu    sync.RWMutex
	value T
	equal func(a, b T) bool

	obsMu     sync.Mutex
	observers []fieldObserver[T]
	lastObsID uint64
}

type fieldObserver[T any] struct {
	id uint64
	fn func(T)
}

// NewField creates a standalone field. A write to it outside any batch is
// its own batch: dependent selectors have recomputed when Set returns.
func NewField[T any](t *Tracker, initial T) *Field[T] {
	return newField(t, nil, "", initial)
}

// Declare creates a field owned by s. name labels the field in logs and in
// the dependency graph.
func Declare[T any](s *Store, name string, initial T) *Field[T] {
	f := newField(s.t, s, name, initial)
	s.adopt(f)
	return f
}

func newField[T any](t *Tracker, s *Store, name string, initial T) *Field[T] {
	id := t.newID()
	switch {
	case name == "":
		name = "field#" + id.String()
	case s != nil:
		name = s.name + "." + name
	}

	f := &Field[T]{
		t:     t,
		id:    id,
		name:  name,
		store: s,
		value: initial,
		equal: defaultEqual[T](),
	}
	t.table.label(id, name)
	return f
}

// ID returns the field's source id.
func (f *Field[T]) ID() SourceID {
	return f.id
}

// Name returns the field's label.
func (f *Field[T]) Name() string {
	return f.name
}

// Store returns the owning store, or nil for a standalone field.
func (f *Field[T]) Store() *Store {
	return f.store
}

// WithEquals sets the equality used to skip unchanged writes.
// Passing nil makes every write a change.
func (f *Field[T]) WithEquals(fn func(a, b T) bool) *Field[T] {
	f.mu.Lock()
	f.equal = fn
	f.mu.Unlock()
	return f
}

// Get returns the current value and, inside a tracked computation, records
// the field as a dependency of the innermost computation.
func (f *Field[T]) Get() T {
	f.mu.RLock()
	value := f.value
	f.mu.RUnlock()

	f.t.recordRead(f.id)
	return value
}

// Peek returns the current value without recording a dependency.
func (f *Field[T]) Peek() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Set stores value. If it equals the current value (see WithEquals) nothing
// happens.
func (f *Field[T]) Set(value T) {
	f.write(value, false)
}

// Force stores value and invalidates subscribers even if it is unchanged.
func (f *Field[T]) Force(value T) {
	f.write(value, true)
}

// Update stores fn(current value).
func (f *Field[T]) Update(fn func(T) T) {
	f.write(fn(f.Peek()), false)
}

// OnSet registers fn to be called with every value actually stored.
// It returns a function that removes the observer.
func (f *Field[T]) OnSet(fn func(T)) (cancel func()) {
	f.obsMu.Lock()
	f.lastObsID++
	id := f.lastObsID
	f.observers = append(f.observers, fieldObserver[T]{id: id, fn: fn})
	f.obsMu.Unlock()

	return func() {
		f.obsMu.Lock()
		defer f.obsMu.Unlock()
		for i, o := range f.observers {
			if o.id == id {
				f.observers = append(f.observers[:i], f.observers[i+1:]...)
				return
			}
		}
	}
}

func (f *Field[T]) write(value T, forced bool) {
	if f.store != nil && !f.store.updating() {
		fail("ST003", ErrWriteOutsideUpdate, "field %q", f.name)
	}

	f.mu.Lock()
	changed := forced || f.equal == nil || !f.equal(f.value, value)
	if changed {
		f.value = value
	}
	f.mu.Unlock()

	if !changed {
		return
	}

	f.notify(value)
	f.t.invalidate(f.id)
}

func (f *Field[T]) notify(value T) {
	f.obsMu.Lock()
	if len(f.observers) == 0 {
		f.obsMu.Unlock()
		return
	}
	observers := make([]fieldObserver[T], len(f.observers))
	copy(observers, f.observers)
	f.obsMu.Unlock()

	for _, o := range observers {
		o.fn(value)
	}
}
