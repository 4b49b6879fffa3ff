package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sterrors "github.com/vango-dev/statetrack/internal/errors"
)

func TestFieldGetPeek(t *testing.T) {
	tr := New()
	f := NewField(tr, "a")
	assert.Equal(t, "a", f.Get())
	assert.Equal(t, "a", f.Peek())
	assert.Nil(t, f.Store())
	assert.Equal(t, "field#"+f.ID().String(), f.Name())

	_, deps := Track(tr, func() string { return f.Peek() })
	assert.Empty(t, deps, "Peek records nothing")
}

func TestFieldForce(t *testing.T) {
	tr := New()
	f := NewField(tr, 1)
	sel := NewSelector(tr, func() int { return f.Get() })

	f.Force(1)
	assert.EqualValues(t, 2, sel.Runs())
}

func TestFieldUpdate(t *testing.T) {
	tr := New()
	f := NewField(tr, 1)
	f.Update(func(v int) int { return v + 41 })
	assert.Equal(t, 42, f.Peek())
}

func TestFieldWithEquals(t *testing.T) {
	tr := New()
	f := NewField(tr, []string{"a"}).WithEquals(func(a, b []string) bool {
		return len(a) == len(b)
	})
	sel := NewSelector(tr, func() int { return len(f.Get()) })

	f.Set([]string{"b"})
	assert.EqualValues(t, 1, sel.Runs())
	assert.Equal(t, []string{"a"}, f.Peek(), "equal write is dropped")

	f.Set([]string{"b", "c"})
	assert.EqualValues(t, 2, sel.Runs())
}

func TestFieldOnSet(t *testing.T) {
	tr := New()
	f := NewField(tr, 0)

	var seen []int
	cancel := f.OnSet(func(v int) { seen = append(seen, v) })
	f.Set(1)
	f.Set(1)
	f.Force(1)
	cancel()
	f.Set(2)

	assert.Equal(t, []int{1, 1}, seen)
}

func TestFieldSubscribersClearedOnWrite(t *testing.T) {
	tr := New()
	f := NewField(tr, 1)
	gate := NewField(tr, true)
	sel := NewSelector(tr, func() int {
		if gate.Peek() {
			return f.Get()
		}
		return 0
	})
	require.Equal(t, []SourceID{sel.ID()}, tr.Subscribers(f))

	gate.Set(false) // not tracked: no recompute
	f.Set(2)        // recomputes; the new run no longer reads f

	assert.EqualValues(t, 2, sel.Runs())
	assert.Empty(t, tr.Subscribers(f))
}

func TestStoreFieldWriteOutsideUpdate(t *testing.T) {
	tr := New()
	store := NewStore(tr, "grid")
	size := Declare(store, "size", 8)

	r := capturePanic(func() { size.Set(16) })
	require.NotNil(t, r)
	err := r.(error)
	assert.ErrorIs(t, err, ErrWriteOutsideUpdate)
	assert.Equal(t, "ST003", sterrors.Code(err))
	assert.Contains(t, err.Error(), `"grid.size"`)
	assert.Equal(t, 8, size.Peek())

	store.Update(func() { size.Set(16) })
	assert.Equal(t, 16, size.Peek())
}
