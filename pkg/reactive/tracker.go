package reactive

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Tracker coordinates dependency tracking for a set of stores and selectors.
//
// It correlates the computation currently running on a goroutine with the
// sources it reads, and owns the subscription table mapping each source to
// the selectors that depend on it. Trackers are independent: fields, stores
// and selectors created on one tracker never interact with another.
//
// The active-computation stack and batch state are kept per goroutine. The
// subscription table is shared and guarded by a mutex.
type Tracker struct {
	id     string
	logger *slog.Logger
	hooks  Hooks

	maxCascade  int
	cascadeMode CascadeMode

	lastID     atomic.Uint64
	recomputes atomic.Uint64

	table  *table
	states routineStates
}

// New creates a Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		id:         uuid.NewString(),
		logger:     slog.New(slog.DiscardHandler),
		hooks:      NopHooks{},
		maxCascade: DefaultMaxCascade,
		table:      newTable(),
		states:     newRoutineStates(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("tracker", t.id)
	return t
}

// ID returns the tracker's unique instance id.
func (t *Tracker) ID() string {
	return t.id
}

// Logger returns the tracker's logger.
func (t *Tracker) Logger() *slog.Logger {
	return t.logger
}

// newID returns the next source id.
func (t *Tracker) newID() SourceID {
	return SourceID(t.lastID.Add(1))
}

// Track runs fn with a fresh dependency frame pushed on the calling
// goroutine's active-computation stack and returns fn's result together
// with the sources it read, in first-read order.
//
// Nested calls are supported: reads are attributed only to the innermost
// frame. Track itself subscribes nothing; selectors use it to discover
// their dependencies.
func Track[T any](t *Tracker, fn func() T) (T, []SourceID) {
	return track(t, 0, fn)
}

// track runs fn under a frame owned by owner (0 for anonymous frames).
func track[T any](t *Tracker, owner SourceID, fn func() T) (value T, deps []SourceID) {
	st := t.states.current()
	f := newFrame(owner)
	st.frames = append(st.frames, f)

	completed := false
	defer func() {
		if !completed {
			t.unwind(st, f)
		}
	}()

	value = fn()
	completed = true
	t.pop(st, f)
	return value, f.deps()
}

// pop removes f from the top of the stack.
func (t *Tracker) pop(st *routineState, f *frame) {
	if st.top() != f {
		t.unwind(st, f)
		fail("ST004", ErrFrameOrder, "frame of %d is not innermost", f.owner)
	}
	st.frames = st.frames[:len(st.frames)-1]
	t.states.release(st)
}

// unwind drops f and every frame above it. Used when a computation panics.
func (t *Tracker) unwind(st *routineState, f *frame) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if st.frames[i] == f {
			st.frames = st.frames[:i]
			break
		}
	}
	t.states.release(st)
}

// recordRead attributes a read of id to the innermost active frame, if any.
func (t *Tracker) recordRead(id SourceID) {
	st, ok := t.states.lookup()
	if !ok {
		return
	}
	if f := st.top(); f != nil && f.owner != id {
		f.add(id)
	}
}

// Untracked runs fn without attributing its reads to any enclosing
// computation.
func (t *Tracker) Untracked(fn func()) {
	track(t, 0, func() struct{} {
		fn()
		return struct{}{}
	})
}

// Invalidate schedules recomputation of every selector subscribed to src
// and clears src's subscriber set. Outside a batch the recomputations run
// before Invalidate returns.
func (t *Tracker) Invalidate(src Source) {
	t.invalidate(src.ID())
}

func (t *Tracker) invalidate(src SourceID) {
	subs := t.table.take(src)
	if len(subs) == 0 {
		return
	}

	st := t.states.current()
	for _, sub := range subs {
		st.enqueue(sub)
	}
	t.logger.Debug("invalidate", "source", src, "subscribers", len(subs))

	if st.batchDepth == 0 && !st.flushing {
		defer t.states.release(st)
		t.flush(st, "")
	}
}

// Batch runs fn and defers every invalidation it causes until fn returns,
// so each affected selector recomputes at most once. Batches nest; only the
// outermost one flushes. Writes to several stores can share one batch.
//
// If fn panics, the outermost batch does not flush: selectors queued by the
// partial batch keep their previous values and stay subscribed to the
// sources they last read.
func (t *Tracker) Batch(fn func(), opts ...BatchOption) {
	t.batch("", fn, opts)
}

func (t *Tracker) batch(scope string, fn func(), opts []BatchOption) {
	var cfg batchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	st := t.states.current()
	if st.batchDepth == 0 {
		st.scope = scope
	}
	if cfg.alwaysNotify {
		st.alwaysNotify = true
	}
	st.batchDepth++

	completed := false
	defer func() {
		st.batchDepth--
		if st.batchDepth > 0 {
			return
		}
		defer t.settle(st)

		switch {
		case st.flushing:
			// Opened by an observer; the running flush drains the queue.
		case !completed:
			t.abandon(st, "batch panicked")
		default:
			t.flush(st, st.scope)
		}
	}()

	fn()
	completed = true
}

// settle ends the outermost batch: it resets batch-scoped state, runs the
// functions deferred until the flush and releases st if it is idle.
// A batch opened by an observer during a flush leaves them to the flush.
func (t *Tracker) settle(st *routineState) {
	st.scope = ""
	if !st.flushing {
		st.alwaysNotify = false
		runSettled(st)
	}
	t.states.release(st)
}

// runSettled runs the functions deferred until the flush, last first.
func runSettled(st *routineState) {
	fns := st.settle
	st.settle = nil
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// afterFlush defers fn until the calling goroutine's outermost batch has
// flushed. It reports false, without deferring, when no batch is open.
func (t *Tracker) afterFlush(fn func()) bool {
	st, ok := t.states.lookup()
	if !ok || st.batchDepth == 0 {
		return false
	}
	st.settle = append(st.settle, fn)
	return true
}

// notifyAll reports whether the calling goroutine is processing a batch
// opened with BatchAlwaysNotify.
func (t *Tracker) notifyAll() bool {
	st, ok := t.states.lookup()
	return ok && st.alwaysNotify
}

// flush drains the pending queue. Recomputations may enqueue further
// subscribers (a selector republishing, or an observer writing a field);
// those are drained in the same flush.
func (t *Tracker) flush(st *routineState, scope string) {
	if len(st.pending) == 0 {
		return
	}

	st.flushing = true
	st.runs = make(map[SourceID]int)
	done := t.hooks.FlushStarted(scope)
	recomputed := 0

	completed := false
	defer func() {
		st.flushing = false
		st.runs = nil
		st.alwaysNotify = false
		if !completed {
			t.abandon(st, "flush panicked")
		}
		if st.batchDepth == 0 {
			runSettled(st)
		}
		done(recomputed)
		t.logger.Debug("flush", "scope", scope, "recomputed", recomputed)
	}()

	for len(st.pending) > 0 {
		id := st.pending[0]
		st.pending = st.pending[1:]
		if !st.dequeue(id) {
			continue
		}

		n := t.table.resolve(id)
		if n == nil {
			continue
		}

		if !t.admit(st, n) {
			break
		}
		n.recompute()
		recomputed++
	}
	st.pending = nil
	completed = true
}

// abandon drops every queued recomputation. The dropped selectors lost
// their edges to the sources that invalidated them, so each is resubscribed
// to the sources of its last completed run and reacts to later writes.
func (t *Tracker) abandon(st *routineState, reason string) {
	dropped := st.clearQueue()
	for _, id := range dropped {
		t.table.restore(id)
	}
	if len(dropped) > 0 {
		t.logger.Debug("recomputations dropped", "reason", reason, "dropped", len(dropped))
	}
}

// admit counts a recomputation of n in the current flush and enforces the
// cascade limit. It reports whether n may run. When it may not, n and
// everything still queued are dropped and resubscribed to their previous
// sources.
func (t *Tracker) admit(st *routineState, n *node) bool {
	if st.runs == nil {
		return true
	}
	st.runs[n.id]++
	runs := st.runs[n.id]
	if runs <= t.maxCascade {
		return true
	}

	dropped := len(st.queued)
	t.table.restore(n.id)
	t.abandon(st, "cascade limit")
	t.hooks.CascadeExceeded(n.name, runs)
	t.logger.Error("cascade limit exceeded",
		"selector", n.name,
		"runs", runs,
		"limit", t.maxCascade,
		"dropped", dropped,
	)
	if t.cascadeMode == CascadePanic {
		fail("ST005", ErrCascadeLimit, "selector %q recomputed %d times in one flush", n.name, runs)
	}
	return false
}

// pull recomputes n immediately if the calling goroutine is flushing and n
// is still queued, so that readers never observe a value that is about to be
// replaced within the current flush. Outside a flush, queued selectors keep
// their last value until the batch ends.
func (t *Tracker) pull(n *node) {
	st, ok := t.states.lookup()
	if !ok || !st.flushing || !st.dequeue(n.id) {
		return
	}
	if n.disposed.Load() || !t.admit(st, n) {
		return
	}
	n.recompute()
}

// collect is the GC cleanup for selectors dropped without Dispose.
func (t *Tracker) collect(id SourceID) {
	t.table.mu.Lock()
	name := t.table.names[id]
	t.table.mu.Unlock()

	if t.table.release(id) {
		t.hooks.Disposed(name)
		t.logger.Debug("selector collected", "selector", name)
	}
}

// Subscribers returns the ids of selectors currently subscribed to src.
func (t *Tracker) Subscribers(src Source) []SourceID {
	return t.table.subscribersOf(src.ID())
}

// Dependencies returns the ids of the sources sel is currently subscribed
// to. The set reflects sel's most recent run.
func (t *Tracker) Dependencies(sel Source) []SourceID {
	return t.table.sourcesOf(sel.ID())
}

// Graph returns every subscription edge, ordered by source then subscriber.
func (t *Tracker) Graph() []Edge {
	return t.table.edges()
}

// Stats is a point-in-time summary of a Tracker.
type Stats struct {
	// Selectors is the number of live, registered selectors.
	Selectors int `json:"selectors"`
	// Sources is the number of sources with at least one subscriber.
	Sources int `json:"sources"`
	// Edges is the total number of subscriptions.
	Edges int `json:"edges"`
	// Recomputes counts every selector computation, including first runs.
	Recomputes uint64 `json:"recomputes"`
	// Goroutines is the number of goroutines holding tracking state.
	Goroutines int `json:"goroutines"`
}

// Stats returns a summary of the tracker's current state.
func (t *Tracker) Stats() Stats {
	selectors, sources, edges := t.table.counts()
	return Stats{
		Selectors:  selectors,
		Sources:    sources,
		Edges:      edges,
		Recomputes: t.recomputes.Load(),
		Goroutines: t.states.size(),
	}
}
