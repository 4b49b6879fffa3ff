package reactive

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Selector is a memoized derived value. Its computation runs under
// tracking, so the selector discovers which sources it reads and subscribes
// to exactly those. When one of them changes the selector recomputes
// eagerly, replaces its subscription set with the sources read by the new
// run, and republishes its value to observers and downstream selectors if
// the value changed.
//
// The first computation runs synchronously inside NewSelector, so a
// Selector is never observed without a value.
//
// Selectors are also sources: reading one inside another selector's
// computation subscribes the outer selector to the inner one only, not to
// the inner selector's own dependencies.
type Selector[T any] struct {
	t       *Tracker
	n       *node
	compute func() T

	mu    sync.RWMutex
	value T
	ready bool

	equal        func(a, b T) bool
	alwaysNotify bool

	obsMu     sync.Mutex
	observers []selectorObserver[T]
	lastObsID uint64

	runs atomic.Uint64
}

type selectorObserver[T any] struct {
	id uint64
	fn func(old, new T)
}

// NewSelector creates a selector over compute and runs it once.
//
// The tracker holds the selector weakly: a selector that becomes
// unreachable is deregistered automatically, though callers that are done
// with a selector should still call Dispose to stop recomputation at once.
func NewSelector[T any](t *Tracker, compute func() T, opts ...SelectorOption) *Selector[T] {
	var cfg selectorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	id := t.newID()
	name := cfg.name
	if name == "" {
		name = "selector#" + id.String()
	}

	s := &Selector[T]{
		t:            t,
		compute:      compute,
		equal:        defaultEqual[T](),
		alwaysNotify: cfg.alwaysNotify,
	}
	s.n = &node{id: id, name: name, recompute: s.recompute}

	t.table.register(s.n)
	runtime.AddCleanup(s, t.collect, id)

	s.run(true)
	t.logger.Debug("selector created", "selector", name, "deps", len(t.table.sourcesOf(id)))
	return s
}

// ID returns the selector's source id.
func (s *Selector[T]) ID() SourceID {
	return s.n.id
}

// Name returns the selector's label.
func (s *Selector[T]) Name() string {
	return s.n.name
}

// WithEquals sets the equality used to decide whether a recomputation
// changed the value. Passing nil makes every recomputation a change.
func (s *Selector[T]) WithEquals(fn func(a, b T) bool) *Selector[T] {
	s.mu.Lock()
	s.equal = fn
	s.mu.Unlock()
	return s
}

// Value returns the last computed value without subscribing the caller.
// If the selector is queued for recomputation on the calling goroutine, it
// recomputes first.
func (s *Selector[T]) Value() T {
	s.checkSelfRead()
	if !s.n.disposed.Load() {
		s.t.pull(s.n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		fail("ST001", ErrUninitialized, "selector %q", s.n.name)
	}
	return s.value
}

// Get returns the current value and, inside a tracked computation,
// subscribes that computation to this selector.
func (s *Selector[T]) Get() T {
	if s.checkSelfRead() {
		return s.cached()
	}
	if s.n.disposed.Load() {
		fail("ST002", ErrDisposed, "selector %q read after Dispose", s.n.name)
	}
	s.t.pull(s.n)
	s.t.recordRead(s.n.id)
	return s.cached()
}

// checkSelfRead reports whether the selector is reading itself from inside
// its own computation. Doing so before the first run completed is an
// ordering bug.
func (s *Selector[T]) checkSelfRead() bool {
	st, ok := s.t.states.lookup()
	if !ok || !st.running(s.n.id) {
		return false
	}
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if !ready {
		fail("ST001", ErrUninitialized, "selector %q read from its own first computation", s.n.name)
	}
	s.t.logger.Warn("selector reads itself", "selector", s.n.name)
	return true
}

func (s *Selector[T]) cached() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Refresh re-runs the computation now, replacing the subscription set, and
// republishes if the value changed.
func (s *Selector[T]) Refresh() {
	if s.n.disposed.Load() {
		fail("ST002", ErrDisposed, "selector %q refreshed after Dispose", s.n.name)
	}
	s.t.batch("", func() {
		s.run(false)
	}, nil)
}

// OnChange registers fn to be called with the previous and new value each
// time a recomputation changes the value. It returns a function that
// removes the observer.
func (s *Selector[T]) OnChange(fn func(old, new T)) (cancel func()) {
	if s.n.disposed.Load() {
		fail("ST002", ErrDisposed, "observer added to disposed selector %q", s.n.name)
	}

	s.obsMu.Lock()
	s.lastObsID++
	id := s.lastObsID
	s.observers = append(s.observers, selectorObserver[T]{id: id, fn: fn})
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Runs returns how many times the computation has run, including the first
// run at construction.
func (s *Selector[T]) Runs() uint64 {
	return s.runs.Load()
}

// Disposed reports whether Dispose has been called.
func (s *Selector[T]) Disposed() bool {
	return s.n.disposed.Load()
}

// Dispose deregisters the selector from every source it subscribed to and
// from every selector subscribed to it. A recomputation already queued for
// it becomes a no-op. Dispose is idempotent.
func (s *Selector[T]) Dispose() {
	if s.n.disposed.Swap(true) {
		return
	}
	s.t.table.release(s.n.id)

	s.obsMu.Lock()
	s.observers = nil
	s.obsMu.Unlock()

	s.t.hooks.Disposed(s.n.name)
	s.t.logger.Debug("selector disposed", "selector", s.n.name)
}

func (s *Selector[T]) recompute() {
	s.run(false)
}

// run executes the computation under tracking. Previous subscriptions are
// removed before the computation starts, so reads made by this run are the
// only ones left afterwards. If the computation panics, the subscriptions of
// the last completed run are restored.
func (s *Selector[T]) run(initial bool) {
	t := s.t
	id := s.n.id

	if st, ok := t.states.lookup(); ok {
		st.dequeue(id)
	}
	t.table.drop(id)

	completed := false
	defer func() {
		if !completed {
			t.table.restore(id)
		}
	}()

	start := time.Now()
	value, deps := track(t, id, s.compute)
	elapsed := time.Since(start)
	completed = true

	if s.n.disposed.Load() {
		return
	}
	t.table.subscribe(id, deps)
	s.runs.Add(1)
	t.recomputes.Add(1)

	s.mu.Lock()
	old := s.value
	changed := initial || s.alwaysNotify || t.notifyAll() || s.equal == nil || !s.equal(old, value)
	s.value = value
	s.ready = true
	s.mu.Unlock()

	if initial {
		return
	}

	t.hooks.Recomputed(s.n.name, elapsed, changed)
	t.logger.Debug("recomputed", "selector", s.n.name, "deps", len(deps), "changed", changed)
	if !changed {
		return
	}

	s.publish(old, value)
	t.invalidate(id)
}

// publish notifies observers of a changed value.
func (s *Selector[T]) publish(old, value T) {
	s.obsMu.Lock()
	observers := make([]selectorObserver[T], len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, o := range observers {
		o.fn(old, value)
	}
}
