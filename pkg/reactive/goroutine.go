package reactive

import (
	"runtime"

	"github.com/puzpuzpuz/xsync/v3"
)

// routineState is the tracking state of one goroutine for one Tracker.
// It is only ever touched by the goroutine that owns it, so it carries no
// locks of its own.
type routineState struct {
	gid uint64

	// frames is the active-computation stack. The innermost computation is
	// last; reads are attributed to it alone.
	frames []*frame

	// batchDepth tracks nested Batch / Store.Update calls.
	// When > 0, invalidations queue instead of flushing immediately.
	batchDepth int

	// scope names the outermost open batch (a store name, or "" for
	// Tracker.Batch). Reported to Hooks when the batch flushes.
	scope string

	// flushing is true while queued recomputations are being drained.
	flushing bool

	// pending holds queued subscriber ids in FIFO order; queued is the
	// authoritative membership set. An id present in pending but absent from
	// queued was already recomputed on demand and is skipped.
	pending []SourceID
	queued  map[SourceID]struct{}

	// runs counts recomputations per selector during the current flush.
	runs map[SourceID]int

	// alwaysNotify is set by a batch opened with BatchAlwaysNotify and
	// holds until the flush that processes it ends.
	alwaysNotify bool

	// settle holds functions to run once the outermost batch has flushed,
	// such as releasing a store held by a nested Update.
	settle []func()
}

// idle reports whether the state holds nothing worth keeping.
func (st *routineState) idle() bool {
	return len(st.frames) == 0 && st.batchDepth == 0 && !st.flushing &&
		len(st.pending) == 0 && len(st.settle) == 0
}

// clearQueue empties the pending queue and returns the ids that were still
// queued, in queue order.
func (st *routineState) clearQueue() []SourceID {
	var dropped []SourceID
	for _, id := range st.pending {
		if _, ok := st.queued[id]; ok {
			delete(st.queued, id)
			dropped = append(dropped, id)
		}
	}
	st.pending = nil
	st.queued = nil
	return dropped
}

// enqueue adds a subscriber to the pending queue unless already queued.
func (st *routineState) enqueue(id SourceID) bool {
	if st.queued == nil {
		st.queued = make(map[SourceID]struct{})
	}
	if _, ok := st.queued[id]; ok {
		return false
	}
	st.queued[id] = struct{}{}
	st.pending = append(st.pending, id)
	return true
}

// dequeue removes id from the queued set. It reports whether id was queued.
func (st *routineState) dequeue(id SourceID) bool {
	if _, ok := st.queued[id]; !ok {
		return false
	}
	delete(st.queued, id)
	return true
}

// top returns the innermost active frame, or nil outside tracking.
func (st *routineState) top() *frame {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

// running reports whether a frame owned by id is on the stack.
func (st *routineState) running(id SourceID) bool {
	for _, f := range st.frames {
		if f.owner == id {
			return true
		}
	}
	return false
}

// routineStates stores per-goroutine states of a single tracker.
type routineStates struct {
	m *xsync.MapOf[uint64, *routineState]
}

func newRoutineStates() routineStates {
	return routineStates{m: xsync.NewMapOf[uint64, *routineState]()}
}

// current returns the state for the calling goroutine, creating it if needed.
func (r routineStates) current() *routineState {
	gid := goroutineID()
	st, _ := r.m.LoadOrCompute(gid, func() *routineState {
		return &routineState{gid: gid}
	})
	return st
}

// lookup returns the calling goroutine's state without creating one.
func (r routineStates) lookup() (*routineState, bool) {
	return r.m.Load(goroutineID())
}

// release drops st once it has nothing left to track so that finished
// goroutines do not accumulate.
func (r routineStates) release(st *routineState) {
	if st.idle() {
		r.m.Delete(st.gid)
	}
}

// size returns the number of goroutines with live state.
func (r routineStates) size() int {
	return r.m.Size()
}

// goroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
