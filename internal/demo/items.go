package demo

import (
	"slices"

	"github.com/google/uuid"

	"github.com/vango-dev/statetrack/pkg/orderedmap"
	"github.com/vango-dev/statetrack/pkg/reactive"
)

// Item is one canvas object.
type Item struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Hidden bool      `json:"hidden,omitempty"`
}

// ItemMap is the ordered item collection, keyed by item id.
type ItemMap = orderedmap.Map[uuid.UUID, Item]

// ItemStore owns the committed items and a pending copy. While pending is
// active, readers see the pending items instead of the committed ones.
type ItemStore struct {
	store   *reactive.Store
	items   *reactive.Field[*ItemMap]
	pending *reactive.Field[*ItemMap]
	active  *reactive.Field[bool]

	hidden *reactive.Derived[[]uuid.UUID]
}

// NewItemStore creates an empty item store.
func NewItemStore(t *reactive.Tracker) *ItemStore {
	s := reactive.NewStore(t, "items")
	equal := func(a, b *ItemMap) bool { return orderedmap.Equal(a, b) }
	is := &ItemStore{
		store:   s,
		items:   reactive.Declare(s, "map", orderedmap.New[uuid.UUID, Item](0)).WithEquals(equal),
		pending: reactive.Declare(s, "pending", orderedmap.New[uuid.UUID, Item](0)).WithEquals(equal),
		active:  reactive.Declare(s, "pending_active", false),
	}
	is.hidden = reactive.DeclareDerived(s, "hidden_ids", func() []uuid.UUID {
		var ids []uuid.UUID
		for id, it := range is.Map().All() {
			if it.Hidden {
				ids = append(ids, id)
			}
		}
		return ids
	})
	return is
}

// Store returns the underlying store.
func (s *ItemStore) Store() *reactive.Store { return s.store }

// Map returns the items currently in effect, tracked. Only the map in
// effect becomes a dependency. The returned map must not be modified.
func (s *ItemStore) Map() *ItemMap {
	if s.active.Get() {
		return s.pending.Get()
	}
	return s.items.Get()
}

// HiddenIDs returns the ids of hidden items in order. A reader depends on
// the item fields the list is derived from.
func (s *ItemStore) HiddenIDs() []uuid.UUID {
	return s.hidden.Get()
}

// Item returns the item with id from the map in effect, tracked.
func (s *ItemStore) Item(id uuid.UUID) (Item, bool) {
	return s.Map().Get(id)
}

// Add appends a new item and returns its id.
func (s *ItemStore) Add(name string, x, y float64) uuid.UUID {
	id := uuid.New()
	s.mutate(func(m *ItemMap) {
		m.Set(id, Item{ID: id, Name: name, X: x, Y: y})
	})
	return id
}

// Move sets an item's position. Unknown ids are ignored.
func (s *ItemStore) Move(id uuid.UUID, x, y float64) {
	s.mutate(func(m *ItemMap) {
		if it, ok := m.Get(id); ok {
			it.X, it.Y = x, y
			m.Set(id, it)
		}
	})
}

// SetHidden hides or shows an item.
func (s *ItemStore) SetHidden(id uuid.UUID, hidden bool) {
	s.mutate(func(m *ItemMap) {
		if it, ok := m.Get(id); ok {
			it.Hidden = hidden
			m.Set(id, it)
		}
	})
}

// Remove deletes an item.
func (s *ItemStore) Remove(id uuid.UUID) {
	s.mutate(func(m *ItemMap) { m.Delete(id) })
}

// Reorder moves the item with id to position i.
func (s *ItemStore) Reorder(id uuid.UUID, i int) error {
	var err error
	s.mutate(func(m *ItemMap) {
		err = m.MutateKeys(func(keys []uuid.UUID) []uuid.UUID {
			from := slices.Index(keys, id)
			if from < 0 || i < 0 || i >= len(keys) {
				return keys
			}
			keys = slices.Delete(keys, from, from+1)
			return slices.Insert(keys, i, id)
		})
	})
	return err
}

// BeginPending starts a preview: the pending copy starts from the committed
// items and becomes the map in effect.
func (s *ItemStore) BeginPending() {
	s.store.Update(func() {
		s.pending.Set(s.items.Peek().Clone())
		s.active.Set(true)
	})
}

// Commit makes the pending items the committed ones and ends the preview.
func (s *ItemStore) Commit() {
	s.store.Update(func() {
		if s.active.Peek() {
			s.items.Set(s.pending.Peek())
			s.active.Set(false)
		}
	})
}

// Cancel ends the preview and drops pending changes.
func (s *ItemStore) Cancel() {
	s.store.Update(func() { s.active.Set(false) })
}

// mutate applies fn to a copy of the map in effect and stores the copy.
func (s *ItemStore) mutate(fn func(*ItemMap)) {
	s.store.Update(func() {
		target := s.items
		if s.active.Peek() {
			target = s.pending
		}
		next := target.Peek().Clone()
		fn(next)
		target.Set(next)
	})
}

// NewVisibleCount returns a selector counting items that are not hidden.
func NewVisibleCount(t *reactive.Tracker, s *ItemStore) *reactive.Selector[int] {
	return reactive.NewSelector(t, func() int {
		n := 0
		for _, it := range s.Map().All() {
			if !it.Hidden {
				n++
			}
		}
		return n
	}, reactive.WithName("visible_count"))
}

// NewItemIDs returns a selector listing item ids in order.
func NewItemIDs(t *reactive.Tracker, s *ItemStore) *reactive.Selector[[]uuid.UUID] {
	return reactive.NewSelector(t, func() []uuid.UUID {
		return s.Map().Keys()
	}, reactive.WithName("item_ids")).WithEquals(slices.Equal[[]uuid.UUID])
}
