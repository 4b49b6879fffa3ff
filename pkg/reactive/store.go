package reactive

import (
	"sync"
	"sync/atomic"
)

// Store owns a cohesive set of fields and is the only way to mutate them.
//
// Update applies any number of writes and defers every resulting
// invalidation until the writes are done, so each affected selector
// recomputes at most once per Update and no observer sees a partially
// applied batch. Updates on the same store from different goroutines are
// serialized; a nested Update on the same goroutine joins the running one.
// An Update nested in Tracker.Batch keeps the store until that batch has
// flushed, so another goroutine's Update cannot interleave with it.
type Store struct {
	t    *Tracker
	name string

	// mu serializes Updates across goroutines. holder is the goroutine id
	// holding mu, or 0. owner is the goroutine currently running a mutator,
	// or 0; only it may write the store's fields.
	mu     sync.Mutex
	holder atomic.Uint64
	owner  atomic.Uint64

	fieldsMu sync.Mutex
	fields   []Source
}

// NewStore creates an empty store. Declare adds fields to it.
func NewStore(t *Tracker, name string) *Store {
	return &Store{t: t, name: name}
}

// Name returns the store name.
func (s *Store) Name() string {
	return s.name
}

// Tracker returns the tracker the store belongs to.
func (s *Store) Tracker() *Tracker {
	return s.t
}

// Fields returns the store's fields in declaration order.
func (s *Store) Fields() []Source {
	s.fieldsMu.Lock()
	defer s.fieldsMu.Unlock()
	out := make([]Source, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Store) adopt(f Source) {
	s.fieldsMu.Lock()
	s.fields = append(s.fields, f)
	s.fieldsMu.Unlock()
}

// updating reports whether the calling goroutine is inside s.Update.
func (s *Store) updating() bool {
	owner := s.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// Update runs mutator with write access to the store's fields. All
// recomputations caused by its writes have completed when Update returns,
// unless Update is nested inside Tracker.Batch, in which case they run when
// the outer batch ends. If mutator panics, the writes it already made stay
// applied but nothing is recomputed.
func (s *Store) Update(mutator func(), opts ...BatchOption) {
	gid := goroutineID()
	if s.holder.Load() == gid {
		prev := s.owner.Swap(gid)
		defer s.owner.Store(prev)
		s.t.batch(s.name, mutator, opts)
		return
	}

	s.mu.Lock()
	s.holder.Store(gid)
	s.owner.Store(gid)

	held := false
	defer func() {
		s.owner.Store(0)
		if !held {
			s.unlock()
		}
	}()

	s.t.logger.Debug("update", "store", s.name)
	s.t.batch(s.name, mutator, opts)
	held = s.t.afterFlush(s.unlock)
}

func (s *Store) unlock() {
	s.holder.Store(0)
	s.mu.Unlock()
}
