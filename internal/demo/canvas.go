package demo

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// Canvas wires the demo stores and their selectors on one tracker.
type Canvas struct {
	Tracker *reactive.Tracker
	Grid    *GridStore
	Items   *ItemStore

	SnapSize     *reactive.Selector[float64]
	VisibleCount *reactive.Selector[int]
	ItemIDs      *reactive.Selector[[]uuid.UUID]

	// Snapped lists item positions snapped to the grid. It depends on both
	// stores.
	Snapped *reactive.Selector[[]Item]
}

// NewCanvas creates the stores and selectors.
func NewCanvas(t *reactive.Tracker) *Canvas {
	c := &Canvas{
		Tracker: t,
		Grid:    NewGridStore(t),
		Items:   NewItemStore(t),
	}
	c.SnapSize = NewSnapSize(t, c.Grid)
	c.VisibleCount = NewVisibleCount(t, c.Items)
	c.ItemIDs = NewItemIDs(t, c.Items)
	c.Snapped = reactive.NewSelector(t, func() []Item {
		step := c.SnapSize.Get()
		out := make([]Item, 0, c.Items.Map().Len())
		for _, it := range c.Items.Map().All() {
			it.X, it.Y = Snap(step, it.X, it.Y)
			out = append(out, it)
		}
		return out
	}, reactive.WithName("snapped"))
	return c
}

// Dispose releases every selector.
func (c *Canvas) Dispose() {
	c.Snapped.Dispose()
	c.ItemIDs.Dispose()
	c.VisibleCount.Dispose()
	c.SnapSize.Dispose()
}

// Step applies one random edit, as the inspector's background driver does.
// It returns a short description of the edit.
func (c *Canvas) Step(r *rand.Rand) string {
	ids := c.ItemIDs.Value()

	switch op := r.IntN(6); {
	case op == 0 || len(ids) == 0:
		name := fmt.Sprintf("item-%d", len(ids)+1)
		c.Items.Add(name, r.Float64()*100, r.Float64()*100)
		return "add " + name
	case op == 1:
		id := ids[r.IntN(len(ids))]
		c.Items.Move(id, r.Float64()*100, r.Float64()*100)
		return "move " + id.String()
	case op == 2:
		id := ids[r.IntN(len(ids))]
		it, _ := c.Items.Item(id)
		c.Items.SetHidden(id, !it.Hidden)
		return "toggle " + id.String()
	case op == 3:
		c.Grid.SetCellSize(float64(4 * (1 + r.IntN(4))))
		return "resize grid"
	case op == 4:
		c.Grid.SetVisible(!c.Grid.visible.Peek())
		return "toggle grid"
	default:
		c.Tracker.Batch(func() {
			c.Items.Add("batched", r.Float64()*100, r.Float64()*100)
			c.Grid.SetCellSize(DefaultCellSize)
		})
		return "batch add+reset"
	}
}
