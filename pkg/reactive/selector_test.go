package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sterrors "github.com/vango-dev/statetrack/internal/errors"
)

func TestSelectorComputesEagerly(t *testing.T) {
	tr := New()
	calls := 0
	sel := NewSelector(tr, func() string {
		calls++
		return "ready"
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, "ready", sel.Value())
	assert.Equal(t, "ready", sel.Value())
	assert.Equal(t, 1, calls, "reads use the cached value")
}

func TestSelectorDefaultName(t *testing.T) {
	tr := New()
	sel := NewSelector(tr, func() int { return 0 })
	assert.Equal(t, "selector#"+sel.ID().String(), sel.Name())

	named := NewSelector(tr, func() int { return 0 }, WithName("visible"))
	assert.Equal(t, "visible", named.Name())
}

func TestSelectorOnChange(t *testing.T) {
	tr := New()
	x := NewField(tr, 1)
	sel := NewSelector(tr, func() int { return x.Get() * 10 })

	type change struct{ old, new int }
	var changes []change
	cancel := sel.OnChange(func(old, new int) {
		changes = append(changes, change{old, new})
	})

	x.Set(2)
	x.Set(2)
	x.Set(3)
	cancel()
	x.Set(4)

	assert.Equal(t, []change{{10, 20}, {20, 30}}, changes)
	assert.Equal(t, 40, sel.Value())
}

func TestSelectorAlwaysNotify(t *testing.T) {
	tr := New()
	x := NewField(tr, 1)
	parity := NewSelector(tr, func() int { return x.Get() % 2 }, WithAlwaysNotify())

	notified := 0
	parity.OnChange(func(int, int) { notified++ })

	x.Set(3)
	x.Set(5)

	assert.Equal(t, 2, notified)
	assert.Equal(t, 1, parity.Value())
}

func TestSelectorRefreshRetracks(t *testing.T) {
	tr := New()
	a := NewField(tr, 1)
	b := NewField(tr, 2)
	useB := false
	sel := NewSelector(tr, func() int {
		if useB {
			return b.Get()
		}
		return a.Get()
	})

	useB = true
	sel.Refresh()

	assert.Equal(t, 2, sel.Value())
	assert.Equal(t, []SourceID{b.ID()}, tr.Dependencies(sel))
	assert.Empty(t, tr.Subscribers(a))
}

func TestSelectorReadingItselfUsesCachedValue(t *testing.T) {
	tr := New()
	var self *Selector[int]
	sel := NewSelector(tr, func() int {
		if self != nil {
			return self.Get() + 1
		}
		return 0
	})
	self = sel

	sel.Refresh()
	assert.Equal(t, 1, sel.Value())
	assert.Empty(t, tr.Dependencies(sel), "a selector never subscribes to itself")
}

func TestSelectorReadBeforeFirstComputation(t *testing.T) {
	tr := New()
	// Built by hand: NewSelector never hands out an uncomputed selector.
	s := &Selector[int]{t: tr}
	s.n = &node{id: tr.newID(), name: "raw"}

	r := capturePanic(func() { s.Value() })
	require.NotNil(t, r)
	err := r.(error)
	assert.ErrorIs(t, err, ErrUninitialized)
	assert.Equal(t, "ST001", sterrors.Code(err))
}

func TestSelectorUseAfterDispose(t *testing.T) {
	hooks := &recordingHooks{}
	tr := New(WithHooks(hooks))
	x := NewField(tr, 1)
	sel := NewSelector(tr, func() int { return x.Get() }, WithName("gone"))
	sel.Dispose()

	assert.Equal(t, []string{"gone"}, hooks.disposedNames())
	assert.Equal(t, 1, sel.Value())

	for name, fn := range map[string]func(){
		"Get":      func() { sel.Get() },
		"Refresh":  func() { sel.Refresh() },
		"OnChange": func() { sel.OnChange(func(int, int) {}) },
	} {
		r := capturePanic(fn)
		require.NotNil(t, r, name)
		assert.ErrorIs(t, r.(error), ErrDisposed, name)
		assert.Equal(t, "ST002", sterrors.Code(r.(error)), name)
	}
}

func TestDisposeDetachesDownstream(t *testing.T) {
	tr := New()
	x := NewField(tr, 1)
	inner := NewSelector(tr, func() int { return x.Get() })
	outer := NewSelector(tr, func() int { return inner.Get() })
	require.Equal(t, []SourceID{inner.ID()}, tr.Dependencies(outer))

	inner.Dispose()

	assert.Empty(t, tr.Dependencies(outer))
	x.Set(2)
	assert.EqualValues(t, 1, outer.Runs())
}
