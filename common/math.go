package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Epsilon is the tolerance used when comparing accumulated path lengths.
const Epsilon = 1e-9

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpVec interpolates between a and b. t == 1 returns b exactly.
func LerpVec(a, b cp.Vector, t float64) cp.Vector {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return cp.Vector{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// Normalize returns v scaled to unit length, or the zero vector when v has no length.
func Normalize(v cp.Vector) cp.Vector {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return cp.Vector{}
	}
	return cp.Vector{X: v.X / l, Y: v.Y / l}
}

// AngleBetween returns the unsigned angle in radians between a and b.
// Zero-length inputs report no turn.
func AngleBetween(a, b cp.Vector) float64 {
	la := math.Hypot(a.X, a.Y)
	lb := math.Hypot(b.X, b.Y)
	if la == 0 || lb == 0 {
		return 0
	}
	c := (a.X*b.X + a.Y*b.Y) / (la * lb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b cp.Vector) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Cross returns the z component of (b-a) x (c-a). Positive when c lies to the
// left of the directed line a->b.
func Cross(a, b, c cp.Vector) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// PolylineLength sums the distances between consecutive points.
func PolylineLength(points []cp.Vector) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Dist(points[i-1], points[i])
	}
	return total
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
