package demo

import (
	"math"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// DefaultCellSize is the initial grid cell size.
const DefaultCellSize = 8

// GridStore owns the canvas grid settings.
type GridStore struct {
	store    *reactive.Store
	cellSize *reactive.Field[float64]
	visible  *reactive.Field[bool]
}

// NewGridStore creates a visible grid with DefaultCellSize cells.
func NewGridStore(t *reactive.Tracker) *GridStore {
	s := reactive.NewStore(t, "grid")
	return &GridStore{
		store:    s,
		cellSize: reactive.Declare(s, "cell_size", float64(DefaultCellSize)),
		visible:  reactive.Declare(s, "visible", true),
	}
}

// Store returns the underlying store.
func (g *GridStore) Store() *reactive.Store { return g.store }

// CellSize returns the cell size, tracked.
func (g *GridStore) CellSize() float64 { return g.cellSize.Get() }

// Visible reports whether the grid is shown, tracked.
func (g *GridStore) Visible() bool { return g.visible.Get() }

// SetCellSize changes the cell size. Non-positive sizes are ignored.
func (g *GridStore) SetCellSize(size float64) {
	if size <= 0 {
		return
	}
	g.store.Update(func() { g.cellSize.Set(size) })
}

// SetVisible shows or hides the grid.
func (g *GridStore) SetVisible(visible bool) {
	g.store.Update(func() { g.visible.Set(visible) })
}

// Configure sets both values in one update.
func (g *GridStore) Configure(size float64, visible bool) {
	g.store.Update(func() {
		if size > 0 {
			g.cellSize.Set(size)
		}
		g.visible.Set(visible)
	})
}

// NewSnapSize returns a selector for the effective snapping step: the cell
// size while the grid is visible, 0 (no snapping) while hidden. The cell
// size is only a dependency while the grid is visible.
func NewSnapSize(t *reactive.Tracker, g *GridStore) *reactive.Selector[float64] {
	return reactive.NewSelector(t, func() float64 {
		if !g.Visible() {
			return 0
		}
		return g.CellSize()
	}, reactive.WithName("snap_size"))
}

// Snap rounds (x, y) to the nearest multiple of step. A step <= 0 returns
// the point unchanged.
func Snap(step, x, y float64) (float64, float64) {
	if step <= 0 {
		return x, y
	}
	return math.Round(x/step) * step, math.Round(y/step) * step
}
