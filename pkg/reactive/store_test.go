package reactive

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreFields(t *testing.T) {
	tr := New()
	store := NewStore(tr, "grid")
	size := Declare(store, "size", 8)
	visible := Declare(store, "visible", true)

	assert.Equal(t, "grid", store.Name())
	assert.Same(t, tr, store.Tracker())
	assert.Same(t, store, size.Store())
	assert.Equal(t, "grid.visible", visible.Name())

	fields := store.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, size.ID(), fields[0].ID())
	assert.Equal(t, visible.ID(), fields[1].ID())
}

func TestStoreUpdateNoPartialNotification(t *testing.T) {
	tr := New()
	store := NewStore(tr, "rect")
	w := Declare(store, "w", 1)
	h := Declare(store, "h", 1)
	area := NewSelector(tr, func() int { return w.Get() * h.Get() })

	var observed []int
	area.OnChange(func(_, v int) { observed = append(observed, v) })

	store.Update(func() {
		w.Set(2)
		assert.Equal(t, 1, area.Value(), "not recomputed mid-batch")
		h.Set(3)
	})

	assert.Equal(t, []int{6}, observed)
}

func TestStoreNestedUpdateJoins(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	a := Declare(store, "a", 0)
	b := Declare(store, "b", 0)
	sum := NewSelector(tr, func() int { return a.Get() + b.Get() })

	store.Update(func() {
		a.Set(1)
		store.Update(func() { b.Set(2) })
		assert.EqualValues(t, 1, sum.Runs())
	})

	assert.EqualValues(t, 2, sum.Runs())
	assert.Equal(t, 3, sum.Value())
}

func TestStoreObserverMayUpdateDuringFlush(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	src := Declare(store, "src", 1)
	mirror := Declare(store, "mirror", 1)

	watched := NewSelector(tr, func() int { return src.Get() })
	copied := NewSelector(tr, func() int { return mirror.Get() })
	watched.OnChange(func(_, v int) {
		store.Update(func() { mirror.Set(v) })
	})

	store.Update(func() { src.Set(7) })

	assert.Equal(t, 7, copied.Value(), "cascaded write flushed before Update returned")
}

func TestStoreUpdatesSerializeAcrossGoroutines(t *testing.T) {
	tr := New()
	store := NewStore(tr, "counter")
	n := Declare(store, "n", 0)
	total := NewSelector(tr, func() int { return n.Get() })

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				store.Update(func() {
					n.Update(func(v int) int { return v + 1 })
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, n.Peek())
	assert.Equal(t, 400, total.Value())
	assert.EqualValues(t, 401, total.Runs())
}

func TestStoreWriteFromOtherGoroutineDuringUpdate(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	a := Declare(store, "a", 0)

	store.Update(func() {
		done := make(chan any)
		go func() { done <- capturePanic(func() { a.Set(1) }) }()
		assert.ErrorIs(t, (<-done).(error), ErrWriteOutsideUpdate)
	})
	assert.Equal(t, 0, a.Peek())
}

func TestStoreUpdatePanicSkipsFlush(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	a := Declare(store, "a", 1)
	b := Declare(store, "b", 2)
	sum := NewSelector(tr, func() int { return a.Get() + b.Get() })

	var observed []int
	sum.OnChange(func(_, v int) { observed = append(observed, v) })

	require.Panics(t, func() {
		store.Update(func() {
			a.Set(10)
			panic("half way")
		})
	})

	assert.Empty(t, observed, "partial batch is not published")
	assert.EqualValues(t, 1, sum.Runs())
	assert.Equal(t, []SourceID{a.ID(), b.ID()}, tr.Dependencies(sum))
	assert.Equal(t, 0, tr.Stats().Goroutines)

	store.Update(func() { b.Set(20) })
	assert.Equal(t, 30, sum.Value())
	assert.Equal(t, []int{30}, observed)
}

func TestStoreHeldUntilOuterBatchFlushes(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	a := Declare(store, "a", 0)
	sel := NewSelector(tr, func() int { return a.Get() })

	var mu sync.Mutex
	var seen []int
	sel.OnChange(func(_, v int) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	other := make(chan struct{})
	tr.Batch(func() {
		store.Update(func() { a.Set(1) })
		store.Update(func() { a.Set(2) })

		go func() {
			store.Update(func() { a.Set(3) })
			close(other)
		}()
		select {
		case <-other:
			t.Error("update from another goroutine ran inside the batch")
		case <-time.After(50 * time.Millisecond):
		}

		assert.Panics(t, func() { a.Set(9) }, "store is held but not updating")
	})
	<-other

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 3}, seen)
}

func TestStoreUpdateAlwaysNotify(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	a := Declare(store, "a", 2)
	even := NewSelector(tr, func() bool { return a.Get()%2 == 0 })

	var changes int
	even.OnChange(func(_, _ bool) { changes++ })

	store.Update(func() { a.Set(4) })
	assert.Zero(t, changes)

	store.Update(func() { a.Set(6) }, BatchAlwaysNotify())
	assert.Equal(t, 1, changes)
}
