package hex

import (
	"fmt"
	"math"
	"strings"

	"github.com/jakecoffman/cp"
)

// Orientation selects how cells sit on the plane.
type Orientation int

const (
	FlatTop Orientation = iota
	PointyTop
)

func (o Orientation) String() string {
	switch o {
	case FlatTop:
		return "flat"
	case PointyTop:
		return "pointy"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// ParseOrientation accepts "flat", "flat-top", "pointy" or "pointy-top".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat", "flat-top", "flat_top":
		return FlatTop, nil
	case "pointy", "pointy-top", "pointy_top":
		return PointyTop, nil
	default:
		return FlatTop, fmt.Errorf("hex: unknown orientation %q", s)
	}
}

// Layout maps axial coordinates to world positions and back.
// Size is the hex radius (corner to center).
type Layout struct {
	Orientation Orientation
	Size        float64
	Origin      cp.Vector
}

var sqrt3 = math.Sqrt(3)

// ToWorld returns the world-space center of a.
func (l Layout) ToWorld(a Axial) cp.Vector {
	q := float64(a.Q)
	r := float64(a.R)
	var x, y float64
	switch l.Orientation {
	case PointyTop:
		// x = size*sqrt(3)*(q + r/2); y = size*3/2*r
		x = l.Size * sqrt3 * (q + r/2.0)
		y = l.Size * 1.5 * r
	default:
		// x = size*3/2*q; y = size*sqrt(3)*(r + q/2)
		x = l.Size * 1.5 * q
		y = l.Size * sqrt3 * (r + q/2.0)
	}
	return cp.Vector{X: x + l.Origin.X, Y: y + l.Origin.Y}
}

// FromWorld returns the fractional cube coordinate under p.
func (l Layout) FromWorld(p cp.Vector) FracCube {
	if l.Size == 0 {
		return FracCube{}
	}
	x := (p.X - l.Origin.X) / l.Size
	y := (p.Y - l.Origin.Y) / l.Size
	var q, r float64
	switch l.Orientation {
	case PointyTop:
		q = sqrt3/3.0*x - y/3.0
		r = 2.0 / 3.0 * y
	default:
		q = 2.0 / 3.0 * x
		r = -x/3.0 + sqrt3/3.0*y
	}
	return FracCube{X: q, Y: r, Z: -q - r}
}

// CellAt returns the cell containing p.
func (l Layout) CellAt(p cp.Vector) Axial {
	return Round(l.FromWorld(p)).ToAxial()
}

// Corners returns the six corners of a. Edge i, from Corners[i] to
// Corners[(i+1)%6], is shared with the neighbor in Directions[i].
func (l Layout) Corners(a Axial) [6]cp.Vector {
	center := l.ToWorld(a)
	base := 0.0
	if l.Orientation == FlatTop {
		base = 30.0
	}
	var out [6]cp.Vector
	for i := 0; i < 6; i++ {
		deg := base - 60.0*float64(i) + 30.0
		rad := deg * math.Pi / 180.0
		out[i] = cp.Vector{
			X: center.X + l.Size*math.Cos(rad),
			Y: center.Y + l.Size*math.Sin(rad),
		}
	}
	return out
}
