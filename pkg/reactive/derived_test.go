package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedReaderInheritsDependencies(t *testing.T) {
	tr := New()
	grid := NewStore(tr, "grid")
	size := Declare(grid, "size", 8)
	visible := Declare(grid, "visible", true)
	snap := DeclareDerived(grid, "snap", func() int {
		if !visible.Get() {
			return 0
		}
		return size.Get()
	})

	assert.Equal(t, "grid.snap", snap.Name())
	assert.Same(t, grid, snap.Store())
	assert.Equal(t, []SourceID{visible.ID(), size.ID()}, snap.Deps())

	reader := NewSelector(tr, func() int { return snap.Get() * 2 })
	require.Equal(t, 16, reader.Value())
	assert.Equal(t, []SourceID{size.ID(), visible.ID()}, tr.Dependencies(reader))
	assert.Empty(t, tr.Subscribers(snap))

	grid.Update(func() { size.Set(10) })
	assert.Equal(t, 20, reader.Value())

	grid.Update(func() { visible.Set(false) })
	assert.Equal(t, 0, reader.Value())
	assert.Equal(t, []SourceID{visible.ID()}, tr.Dependencies(reader))

	runs := reader.Runs()
	grid.Update(func() { size.Set(12) })
	assert.Equal(t, runs, reader.Runs(), "size is no longer a dependency")
	assert.Equal(t, 0, snap.Peek())
}

func TestDerivedEqualValueStillNotifiesReaders(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	n := Declare(store, "n", 1)
	odd := DeclareDerived(store, "odd", func() bool { return n.Get()%2 == 1 })
	reader := NewSelector(tr, func() bool { return odd.Get() })

	store.Update(func() { n.Set(3) })

	assert.True(t, reader.Value())
	assert.EqualValues(t, 2, reader.Runs(), "readers follow the derived value's fields")
}

func TestDerivedNested(t *testing.T) {
	tr := New()
	store := NewStore(tr, "s")
	w := Declare(store, "w", 2)
	h := Declare(store, "h", 3)
	area := DeclareDerived(store, "area", func() int { return w.Get() * h.Get() })
	double := DeclareDerived(store, "double", func() int { return area.Get() * 2 })

	assert.Equal(t, []SourceID{w.ID(), h.ID()}, double.Deps())

	reader := NewSelector(tr, func() int { return double.Get() })
	store.Update(func() { h.Set(4) })
	assert.Equal(t, 16, reader.Value())
}
