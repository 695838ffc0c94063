package grid

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/hex"
)

func newTestGrid(t *testing.T, w, h int) *Grid {
	t.Helper()
	g := New()
	if err := g.Generate(Params{Width: w, Height: h, HexSize: 10, Orientation: hex.FlatTop}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return g
}

func TestGenerateIndicesDense(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"single", 1, 1},
		{"wide", 7, 2},
		{"square", 5, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := newTestGrid(t, c.w, c.h)
			if g.Len() != c.w*c.h {
				t.Fatalf("expected %d cells, got %d", c.w*c.h, g.Len())
			}
			seen := make(map[int]bool)
			for _, cell := range g.Cells() {
				if cell.Index < 0 || cell.Index >= c.w*c.h || seen[cell.Index] {
					t.Fatalf("bad or duplicate index %d", cell.Index)
				}
				seen[cell.Index] = true
				if cell.Index != cell.Coord.R*c.w+cell.Coord.Q {
					t.Fatalf("index %d does not follow row-major order for %v", cell.Index, cell.Coord)
				}
				if !cell.Enabled() {
					t.Fatalf("new cell %v should be enabled", cell)
				}
			}
			if g.EnabledCount() != c.w*c.h {
				t.Fatalf("enabled subset %d", g.EnabledCount())
			}
		})
	}
}

func TestGenerateRejectsBadParams(t *testing.T) {
	g := New()
	if err := g.Generate(Params{Width: 0, Height: 3, HexSize: 10}); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if err := g.Generate(Params{Width: 3, Height: 3, HexSize: 0}); err == nil {
		t.Fatalf("expected error for zero hex size")
	}
	if g.Len() != 0 {
		t.Fatalf("failed generation should leave grid empty")
	}
}

func TestSetEnabledNotifiesOncePerToggle(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	var got []bool
	unsub := g.Subscribe(func(coord hex.Axial, enabled bool) {
		got = append(got, enabled)
	})
	defer unsub()

	c, _ := g.CellAtCoords(hex.Axial{Q: 1, R: 1})
	steps := []struct {
		value   bool
		changed bool
	}{
		{true, false},
		{true, false},
		{false, true},
		{false, false},
		{true, true},
		{true, false},
	}
	for i, s := range steps {
		changed, err := g.SetEnabled(c, s.value)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if changed != s.changed {
			t.Fatalf("step %d: changed=%v want %v", i, changed, s.changed)
		}
	}
	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Fatalf("notifications = %v", got)
	}
}

func TestEnabledSubsetMatchesFlags(t *testing.T) {
	g := newTestGrid(t, 4, 4)
	for _, a := range []hex.Axial{{Q: 0, R: 0}, {Q: 1, R: 2}, {Q: 3, R: 3}, {Q: 1, R: 2}} {
		if _, err := g.SetEnabledAt(a, false); err != nil {
			t.Fatalf("SetEnabledAt %v: %v", a, err)
		}
	}
	subset := g.EnabledCells()
	if len(subset) != 13 {
		t.Fatalf("expected 13 enabled, got %d", len(subset))
	}
	inSubset := make(map[int]bool)
	for i, c := range subset {
		if i > 0 && subset[i-1].Index >= c.Index {
			t.Fatalf("EnabledCells not in index order")
		}
		inSubset[c.Index] = true
	}
	for _, c := range g.Cells() {
		if c.Enabled() != inSubset[c.Index] {
			t.Fatalf("cell %v flag=%v subset=%v", c, c.Enabled(), inSubset[c.Index])
		}
	}
}

func TestSetEnabledForeignCell(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	other := newTestGrid(t, 2, 2)
	c, _ := other.CellAtCoords(hex.Axial{})
	if _, err := g.SetEnabled(c, false); !errors.Is(err, ErrNoCell) {
		t.Fatalf("expected ErrNoCell, got %v", err)
	}
	if _, err := g.SetEnabledAt(hex.Axial{Q: 9, R: 9}, false); !errors.Is(err, ErrNoCell) {
		t.Fatalf("expected ErrNoCell for missing coord, got %v", err)
	}
}

func TestCellAtWorldPositionBounds(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	layout := g.Layout()
	for _, c := range g.Cells() {
		got, ok := g.CellAtWorldPosition(c.Position())
		if !ok || got != c {
			t.Fatalf("CellAtWorldPosition(%v) = %v, %v", c, got, ok)
		}
	}
	outside := []hex.Axial{{Q: -1, R: 0}, {Q: 0, R: -1}, {Q: 3, R: 0}, {Q: 0, R: 3}, {Q: 10, R: 10}}
	for _, a := range outside {
		if c, ok := g.CellAtWorldPosition(layout.ToWorld(a)); ok {
			t.Fatalf("point over %v resolved to %v", a, c)
		}
	}
}

func TestNeighborsAndRange(t *testing.T) {
	g := newTestGrid(t, 5, 5)
	center, _ := g.CellAtCoords(hex.Axial{Q: 2, R: 2})
	if n := g.Neighbors(center); len(n) != 6 {
		t.Fatalf("interior cell has %d neighbors", len(n))
	}
	corner, _ := g.CellAtCoords(hex.Axial{Q: 0, R: 0})
	if n := g.Neighbors(corner); len(n) != 2 {
		t.Fatalf("corner cell has %d neighbors", len(n))
	}

	if _, err := g.SetEnabledAt(hex.Axial{Q: 3, R: 2}, false); err != nil {
		t.Fatalf("SetEnabledAt: %v", err)
	}
	en := g.EnabledNeighbors(center)
	if len(en) != 5 {
		t.Fatalf("expected 5 enabled neighbors, got %d", len(en))
	}
	for i, n := range en {
		if !n.Enabled() {
			t.Fatalf("disabled neighbor %d returned", i)
		}
	}

	r1 := g.CellsInRange(center, 1)
	if len(r1) != 7 {
		t.Fatalf("range 1 has %d cells", len(r1))
	}
	if e1 := g.EnabledCellsInRange(center, 1); len(e1) != 6 {
		t.Fatalf("enabled range 1 has %d cells", len(e1))
	}
	if r0 := g.CellsInRange(center, 0); len(r0) != 1 || r0[0] != center {
		t.Fatalf("range 0 = %v", r0)
	}
}

func TestSetOriginRecomputesPositions(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	c, _ := g.CellAtCoords(hex.Axial{Q: 1, R: 1})
	before := c.Position()
	g.SetOrigin(cp.Vector{X: 100, Y: 50})
	after := c.Position()
	if math.Abs(after.X-before.X-100) > 1e-9 || math.Abs(after.Y-before.Y-50) > 1e-9 {
		t.Fatalf("position moved by (%v,%v)", after.X-before.X, after.Y-before.Y)
	}
}

func TestClearKeepsGridUsable(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	calls := 0
	g.Subscribe(func(hex.Axial, bool) { calls++ })
	g.Clear()
	if g.Len() != 0 || g.EnabledCount() != 0 {
		t.Fatalf("Clear left %d cells", g.Len())
	}
	if _, ok := g.CellAtWorldPosition(cp.Vector{}); ok {
		t.Fatalf("cleared grid resolved a position")
	}
	if err := g.Generate(Params{Width: 2, Height: 1, HexSize: 5}); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if _, err := g.SetEnabledAt(hex.Axial{Q: 1, R: 0}, false); err != nil {
		t.Fatalf("SetEnabledAt: %v", err)
	}
	if calls != 1 {
		t.Fatalf("listener survived Clear with %d calls", calls)
	}
}

func TestMetadata(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	c, _ := g.CellAtIndex(3)
	if err := g.SetMetadata(c, "terrain", "mud"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	v, ok := g.Metadata(c, "terrain")
	if !ok || v != "mud" {
		t.Fatalf("Metadata = %v, %v", v, ok)
	}
	if _, ok := g.Metadata(c, "missing"); ok {
		t.Fatalf("unexpected metadata hit")
	}
}

func TestPositionReadsDuringSetOrigin(t *testing.T) {
	g := newTestGrid(t, 4, 4)
	c, _ := g.CellAtCoords(hex.Axial{Q: 2, R: 1})
	base := c.Position()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			_ = c.Position()
		}
	}()
	for j := 1; j <= 100; j++ {
		g.SetOrigin(cp.Vector{X: float64(j), Y: 0})
	}
	wg.Wait()

	got := c.Position()
	if math.Abs(got.X-(base.X+100)) > 1e-9 || math.Abs(got.Y-base.Y) > 1e-9 {
		t.Fatalf("position after moves = %v, want %v shifted by 100", got, base)
	}
}

func TestConcurrentReadsDuringToggles(t *testing.T) {
	g := newTestGrid(t, 8, 8)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				for _, c := range g.EnabledCells() {
					_ = g.EnabledNeighbors(c)
				}
			}
		}()
	}
	for j := 0; j < 200; j++ {
		_, _ = g.SetEnabledAt(hex.Axial{Q: j % 8, R: (j / 8) % 8}, j%2 == 0)
	}
	wg.Wait()
	if len(g.EnabledCells()) != g.EnabledCount() {
		t.Fatalf("subset drifted")
	}
}
