package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

type tagged struct {
	Tag   string
	Value any
}

func TestDefaultEqual(t *testing.T) {
	assert.True(t, defaultEqual[int]()(1, 1))
	assert.False(t, defaultEqual[int]()(1, 2))
	assert.True(t, defaultEqual[string]()("a", "a"))
	assert.True(t, defaultEqual[point]()(point{1, 2}, point{1, 2}))
	assert.False(t, defaultEqual[point]()(point{1, 2}, point{2, 1}))

	p := &point{}
	assert.True(t, defaultEqual[*point]()(p, p))
	assert.False(t, defaultEqual[*point]()(p, &point{}))
}

func TestDefaultEqualNonComparable(t *testing.T) {
	assert.Nil(t, defaultEqual[[]int]())
	assert.Nil(t, defaultEqual[map[string]int]())
	assert.Nil(t, defaultEqual[func()]())
	assert.Nil(t, defaultEqual[struct{ S []int }]())
}

func TestDefaultEqualInterfaces(t *testing.T) {
	eq := defaultEqual[any]()
	assert.True(t, eq(1, 1))
	assert.False(t, eq(1, "1"))
	assert.True(t, eq(nil, nil))
	assert.False(t, eq([]int{1}, []int{1}), "non-comparable dynamic values are never equal")

	teq := defaultEqual[tagged]()
	assert.True(t, teq(tagged{"a", 1}, tagged{"a", 1}))
	assert.False(t, teq(tagged{"a", []int{}}, tagged{"a", []int{}}))
}
