// Package orderedmap provides a map that remembers insertion order.
//
// Map is the collection demo stores keep their items in: keyed lookup plus
// a stable, explicitly reorderable sequence. It is not safe for concurrent
// use; store-owned maps are copied with Clone and written back through a
// Field inside Store.Update.
package orderedmap

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrNewKey is returned by MutateKeys when the mutated key list contains a
// key the map does not hold.
var ErrNewKey = errors.New("orderedmap: mutation introduced a new key")

// Map is an insertion-ordered map. The zero value is an empty map ready to
// use.
type Map[K comparable, V any] struct {
	keys  []K
	vals  map[K]V
	index map[K]int
}

// New returns an empty map with room for n entries.
func New[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{
		keys:  make([]K, 0, n),
		vals:  make(map[K]V, n),
		index: make(map[K]int, n),
	}
}

// FromValues builds a map from values, deriving each key with key. A later
// value with a duplicate key replaces the earlier one in place.
func FromValues[K comparable, V any](values []V, key func(V) K) *Map[K, V] {
	m := New[K, V](len(values))
	for _, v := range values {
		m.Set(key(v), v)
	}
	return m
}

func (m *Map[K, V]) init() {
	if m.vals == nil {
		m.vals = make(map[K]V)
		m.index = make(map[K]int)
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.vals[k]
	return v, ok
}

// Index returns the position of k, or -1.
func (m *Map[K, V]) Index(k K) int {
	if i, ok := m.index[k]; ok {
		return i
	}
	return -1
}

// Set stores v under k. A new key is appended; an existing key keeps its
// position. Set reports whether k was new.
func (m *Map[K, V]) Set(k K, v V) bool {
	m.init()
	_, exists := m.vals[k]
	m.vals[k] = v
	if exists {
		return false
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	return true
}

// Delete removes k and returns its value.
func (m *Map[K, V]) Delete(k K) (V, bool) {
	v, ok := m.vals[k]
	if !ok {
		return v, false
	}
	i := m.index[k]
	delete(m.vals, k)
	delete(m.index, k)
	m.keys = slices.Delete(m.keys, i, i+1)
	m.reindex(i)
	return v, true
}

// At returns the entry at position i.
func (m *Map[K, V]) At(i int) (K, V, bool) {
	if i < 0 || i >= len(m.keys) {
		var k K
		var v V
		return k, v, false
	}
	k := m.keys[i]
	return k, m.vals[k], true
}

// SetAt replaces the value at position i. It reports whether i was in range.
func (m *Map[K, V]) SetAt(i int, v V) bool {
	if i < 0 || i >= len(m.keys) {
		return false
	}
	m.vals[m.keys[i]] = v
	return true
}

// Insert adds a new entry at position i (0 <= i <= Len). It fails, leaving
// the map untouched, if k already exists or i is out of range.
func (m *Map[K, V]) Insert(i int, k K, v V) bool {
	if i < 0 || i > len(m.keys) {
		return false
	}
	if _, exists := m.vals[k]; exists {
		return false
	}
	m.init()
	m.vals[k] = v
	m.keys = slices.Insert(m.keys, i, k)
	m.reindex(i)
	return true
}

// RemoveAt removes and returns the entry at position i.
func (m *Map[K, V]) RemoveAt(i int) (K, V, bool) {
	k, _, ok := m.At(i)
	if !ok {
		var v V
		return k, v, false
	}
	v, _ := m.Delete(k)
	return k, v, true
}

// Keys returns a copy of the keys in order.
func (m *Map[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// Values returns the values in key order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.vals[k]
	}
	return out
}

// All iterates over the entries in order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// First returns the first value.
func (m *Map[K, V]) First() (V, bool) {
	_, v, ok := m.At(0)
	return v, ok
}

// Last returns the last value.
func (m *Map[K, V]) Last() (V, bool) {
	_, v, ok := m.At(len(m.keys) - 1)
	return v, ok
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.keys = m.keys[:0]
	clear(m.vals)
	clear(m.index)
}

// MutateKeys lets fn reorder or drop keys. Keys missing from the result are
// deleted. If the result contains a key the map does not hold, or holds a
// key twice, the map is left unchanged and an error is returned.
func (m *Map[K, V]) MutateKeys(fn func(keys []K) []K) error {
	mutated := fn(slices.Clone(m.keys))

	seen := make(map[K]struct{}, len(mutated))
	for _, k := range mutated {
		if _, ok := m.vals[k]; !ok {
			return fmt.Errorf("%w: %v", ErrNewKey, k)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("orderedmap: duplicate key %v", k)
		}
		seen[k] = struct{}{}
	}

	for _, k := range m.keys {
		if _, keep := seen[k]; !keep {
			delete(m.vals, k)
			delete(m.index, k)
		}
	}
	m.keys = mutated
	m.reindex(0)
	return nil
}

// Clone returns a shallow copy.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := New[K, V](len(m.keys))
	for _, k := range m.keys {
		c.Set(k, m.vals[k])
	}
	return c
}

// Equal reports whether a and b hold the same keys in the same order with
// equal values.
func Equal[K, V comparable](a, b *Map[K, V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is Equal with a custom value comparison.
func EqualFunc[K comparable, V any](a, b *Map[K, V], eq func(V, V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, k := range a.keys {
		if b.keys[i] != k || !eq(a.vals[k], b.vals[k]) {
			return false
		}
	}
	return true
}

// reindex refreshes positions from i onwards.
func (m *Map[K, V]) reindex(from int) {
	for i := from; i < len(m.keys); i++ {
		m.index[m.keys[i]] = i
	}
}
