// Package grid owns the hex cell collection and its enabled subset.
package grid

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/hex"
)

// ErrNoCell is returned by operations that need a cell the grid does not own.
var ErrNoCell = errors.New("grid: no such cell")

// Listener receives one call per enabled-state toggle. Calls happen after the
// grid lock is released, so listeners may query the grid.
type Listener func(coord hex.Axial, enabled bool)

// Params describes a generation request.
type Params struct {
	Width       int
	Height      int
	HexSize     float64
	Orientation hex.Orientation
	Origin      cp.Vector
}

func (p Params) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("grid: invalid dimensions %dx%d", p.Width, p.Height)
	}
	if p.HexSize <= 0 {
		return fmt.Errorf("grid: invalid hex size %v", p.HexSize)
	}
	return nil
}

// Grid is a width x height hex grid addressed by axial (q, r) with
// q in [0, width) and r in [0, height).
//
// Reads may run concurrently. SetEnabled, Generate, SetOrigin and Clear take
// the write lock for their whole duration.
type Grid struct {
	mu sync.RWMutex

	width  int
	height int
	layout hex.Layout

	cells   []*Cell
	byCoord map[hex.Axial]*Cell
	enabled map[int]*Cell

	lmu        sync.Mutex
	listeners  map[int]Listener
	listenerID int
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{
		byCoord:   make(map[hex.Axial]*Cell),
		enabled:   make(map[int]*Cell),
		listeners: make(map[int]Listener),
	}
}

// Generate replaces the grid contents with width*height enabled cells.
// Rows are walked first, then columns; index = r*width + q.
func (g *Grid) Generate(p Params) error {
	if g == nil {
		return errors.New("grid: nil grid")
	}
	if err := p.validate(); err != nil {
		return err
	}

	layout := hex.Layout{Orientation: p.Orientation, Size: p.HexSize, Origin: p.Origin}
	n := p.Width * p.Height
	cells := make([]*Cell, 0, n)
	byCoord := make(map[hex.Axial]*Cell, n)
	enabled := make(map[int]*Cell, n)

	for r := 0; r < p.Height; r++ {
		for q := 0; q < p.Width; q++ {
			a := hex.Axial{Q: q, R: r}
			c := &Cell{
				Coord: a,
				Cube:  a.ToCube(),
				Index: len(cells),
			}
			pos := layout.ToWorld(a)
			c.position.Store(&pos)
			c.enabled.Store(true)
			cells = append(cells, c)
			byCoord[a] = c
			enabled[c.Index] = c
		}
	}

	g.mu.Lock()
	g.width = p.Width
	g.height = p.Height
	g.layout = layout
	g.cells = cells
	g.byCoord = byCoord
	g.enabled = enabled
	g.mu.Unlock()
	return nil
}

// Clear drops every cell but keeps the grid and its listeners usable.
func (g *Grid) Clear() {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.width = 0
	g.height = 0
	g.cells = nil
	g.byCoord = make(map[hex.Axial]*Cell)
	g.enabled = make(map[int]*Cell)
}

// SetOrigin moves the whole grid and recomputes every cell position once.
func (g *Grid) SetOrigin(origin cp.Vector) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.layout.Origin == origin {
		return
	}
	g.layout.Origin = origin
	for _, c := range g.cells {
		pos := g.layout.ToWorld(c.Coord)
		c.position.Store(&pos)
	}
}

// Subscribe registers l for toggle notifications. The returned func removes it.
func (g *Grid) Subscribe(l Listener) func() {
	if g == nil || l == nil {
		return func() {}
	}
	g.lmu.Lock()
	g.listenerID++
	id := g.listenerID
	g.listeners[id] = l
	g.lmu.Unlock()
	return func() {
		g.lmu.Lock()
		delete(g.listeners, id)
		g.lmu.Unlock()
	}
}

func (g *Grid) notify(coord hex.Axial, enabled bool) {
	g.lmu.Lock()
	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, g.listeners[id])
	}
	g.lmu.Unlock()

	for _, l := range ls {
		l(coord, enabled)
	}
}

// SetEnabled sets the enabled flag of c. It reports whether the state
// changed; an unchanged value emits no notification.
func (g *Grid) SetEnabled(c *Cell, value bool) (bool, error) {
	if g == nil || c == nil {
		return false, ErrNoCell
	}

	g.mu.Lock()
	owned, ok := g.byCoord[c.Coord]
	if !ok || owned != c {
		g.mu.Unlock()
		return false, fmt.Errorf("%w: %v", ErrNoCell, c)
	}
	if c.enabled.Load() == value {
		g.mu.Unlock()
		return false, nil
	}
	c.enabled.Store(value)
	if value {
		g.enabled[c.Index] = c
	} else {
		delete(g.enabled, c.Index)
	}
	g.mu.Unlock()

	g.notify(c.Coord, value)
	return true, nil
}

// SetEnabledAt is SetEnabled addressed by coordinate.
func (g *Grid) SetEnabledAt(a hex.Axial, value bool) (bool, error) {
	c, ok := g.CellAtCoords(a)
	if !ok {
		return false, fmt.Errorf("%w: (%d,%d)", ErrNoCell, a.Q, a.R)
	}
	return g.SetEnabled(c, value)
}

func (g *Grid) Width() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.width
}

func (g *Grid) Height() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.height
}

// Layout returns the coordinate layout used for world positions.
func (g *Grid) Layout() hex.Layout {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.layout
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// EnabledCount returns the size of the enabled subset.
func (g *Grid) EnabledCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.enabled)
}

// Cells returns every cell in index order.
func (g *Grid) Cells() []*Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// EnabledCells returns the enabled subset in index order.
func (g *Grid) EnabledCells() []*Cell {
	g.mu.RLock()
	out := make([]*Cell, 0, len(g.enabled))
	for _, c := range g.enabled {
		out = append(out, c)
	}
	g.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// CellAtIndex returns the cell with the given sequential index.
func (g *Grid) CellAtIndex(i int) (*Cell, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i < 0 || i >= len(g.cells) {
		return nil, false
	}
	return g.cells[i], true
}

// CellAtCoords is an O(1) lookup by axial coordinate.
func (g *Grid) CellAtCoords(a hex.Axial) (*Cell, bool) {
	if g == nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.byCoord[a]
	return c, ok
}

// CellAtWorldPosition returns the cell under p. Coordinates outside
// [0,width) x [0,height) miss even if something else is indexed there.
func (g *Grid) CellAtWorldPosition(p cp.Vector) (*Cell, bool) {
	if g == nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.cells) == 0 {
		return nil, false
	}
	a := g.layout.CellAt(p)
	if a.Q < 0 || a.Q >= g.width || a.R < 0 || a.R >= g.height {
		return nil, false
	}
	c, ok := g.byCoord[a]
	return c, ok
}

// CellsInRange returns every cell within radius hex steps of center, in index
// order. A linear scan is fine at the grid sizes in play.
func (g *Grid) CellsInRange(center *Cell, radius int) []*Cell {
	return g.inRange(center, radius, false)
}

// EnabledCellsInRange is CellsInRange restricted to enabled cells.
func (g *Grid) EnabledCellsInRange(center *Cell, radius int) []*Cell {
	return g.inRange(center, radius, true)
}

func (g *Grid) inRange(center *Cell, radius int, onlyEnabled bool) []*Cell {
	if g == nil || center == nil || radius < 0 {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Cell, 0)
	for _, c := range g.cells {
		if onlyEnabled && !c.enabled.Load() {
			continue
		}
		if hex.DistanceCube(center.Cube, c.Cube) <= radius {
			out = append(out, c)
		}
	}
	return out
}

// Neighbors returns the existing neighbors of c in hex.Directions order.
func (g *Grid) Neighbors(c *Cell) []*Cell {
	return g.neighbors(c, false)
}

// EnabledNeighbors returns the enabled neighbors of c in hex.Directions order.
func (g *Grid) EnabledNeighbors(c *Cell) []*Cell {
	return g.neighbors(c, true)
}

func (g *Grid) neighbors(c *Cell, onlyEnabled bool) []*Cell {
	if g == nil || c == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Cell, 0, 6)
	for _, d := range hex.Directions {
		n, ok := g.byCoord[c.Coord.Add(d)]
		if !ok {
			continue
		}
		if onlyEnabled && !n.enabled.Load() {
			continue
		}
		out = append(out, n)
	}
	return out
}

// SetMetadata stores an opaque value on c.
func (g *Grid) SetMetadata(c *Cell, key string, value any) error {
	if g == nil || c == nil {
		return ErrNoCell
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if owned, ok := g.byCoord[c.Coord]; !ok || owned != c {
		return fmt.Errorf("%w: %v", ErrNoCell, c)
	}
	if c.metadata == nil {
		c.metadata = make(map[string]any)
	}
	c.metadata[key] = value
	return nil
}

// Metadata returns the value stored under key on c.
func (g *Grid) Metadata(c *Cell, key string) (any, bool) {
	if g == nil || c == nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := c.metadata[key]
	return v, ok
}
