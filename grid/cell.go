package grid

import (
	"fmt"
	"sync/atomic"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/hex"
)

// Cell is a single hex cell. Coordinates and index never change after
// generation; enabled state only changes through Grid.SetEnabled.
type Cell struct {
	Coord hex.Axial
	Cube  hex.Cube
	Index int

	position atomic.Pointer[cp.Vector]
	enabled  atomic.Bool
	metadata map[string]any
}

// Enabled reports whether the cell is currently navigable.
func (c *Cell) Enabled() bool {
	if c == nil {
		return false
	}
	return c.enabled.Load()
}

// Position returns the world-space center of the cell.
func (c *Cell) Position() cp.Vector {
	if c == nil {
		return cp.Vector{}
	}
	p := c.position.Load()
	if p == nil {
		return cp.Vector{}
	}
	return *p
}

func (c *Cell) String() string {
	if c == nil {
		return "cell(nil)"
	}
	return fmt.Sprintf("cell#%d(%d,%d)", c.Index, c.Coord.Q, c.Coord.R)
}
