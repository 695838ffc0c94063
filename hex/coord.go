// Package hex implements axial and cube hex coordinate algebra.
package hex

import "math"

// Axial represents axial coordinates (q, r).
type Axial struct {
	Q int
	R int
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int
	Y int
	Z int
}

// FracCube is a cube coordinate that has not been snapped to a cell yet.
type FracCube struct {
	X float64
	Y float64
	Z float64
}

// Directions holds the six axial neighbor deltas. The order is fixed:
// index i is the direction whose shared edge is (Corners[i], Corners[i+1]).
//
//	0: (+1,  0)
//	1: (+1, -1)
//	2: ( 0, -1)
//	3: (-1,  0)
//	4: (-1, +1)
//	5: ( 0, +1)
var Directions = [6]Axial{
	{+1, 0}, {+1, -1}, {0, -1}, {-1, 0}, {-1, +1}, {0, +1},
}

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// Sub returns a-b in axial space.
func (a Axial) Sub(b Axial) Axial { return Axial{a.Q - b.Q, a.R - b.R} }

// Mul scales an axial vector by k.
func (a Axial) Mul(k int) Axial { return Axial{a.Q * k, a.R * k} }

// S returns the implicit third coordinate.
func (a Axial) S() int { return -a.Q - a.R }

// ToCube converts axial to cube: (q, r) -> (q, r, -q-r).
func (a Axial) ToCube() Cube {
	return Cube{X: a.Q, Y: a.R, Z: -a.Q - a.R}
}

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Y} }

// Valid reports whether the cube constraint x+y+z=0 holds.
func (c Cube) Valid() bool { return c.X+c.Y+c.Z == 0 }

// Neighbor returns the adjacent coordinate in direction dir (0..5, wrapping).
func (a Axial) Neighbor(dir int) Axial {
	return a.Add(Directions[((dir%6)+6)%6])
}

// Neighbors returns the six adjacent coordinates in Directions order.
func (a Axial) Neighbors() [6]Axial {
	var out [6]Axial
	for i, d := range Directions {
		out[i] = a.Add(d)
	}
	return out
}

// Less orders coordinates lexicographically by (q, r).
func (a Axial) Less(b Axial) bool {
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}

// Distance returns hex distance between two axial coords.
func Distance(a, b Axial) int {
	return DistanceCube(a.ToCube(), b.ToCube())
}

// DistanceCube returns (|dx|+|dy|+|dz|)/2.
func DistanceCube(a, b Cube) int {
	return (abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)) / 2
}

// Round snaps a fractional cube coordinate to the containing cell. Each
// component is rounded independently, then the one with the largest rounding
// error is rebuilt from the other two so x+y+z=0 holds exactly.
func Round(f FracCube) Cube {
	rx := math.Round(f.X)
	ry := math.Round(f.Y)
	rz := math.Round(f.Z)

	dx := math.Abs(rx - f.X)
	dy := math.Abs(ry - f.Y)
	dz := math.Abs(rz - f.Z)

	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy > dz {
		ry = -rx - rz
	} else {
		rz = -rx - ry
	}
	return Cube{X: int(rx), Y: int(ry), Z: int(rz)}
}

// RoundAxial rounds fractional axial coordinates to the containing cell.
func RoundAxial(q, r float64) Axial {
	return Round(FracCube{X: q, Y: r, Z: -q - r}).ToAxial()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
