// Package physics owns the chipmunk space holding static obstacles and
// answers ray and disc queries against it.
package physics

import (
	"math"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/spatial"
)

const collisionTypeObstacle cp.CollisionType = 1

// World is a static obstacle space. Shapes never move; the space is never
// stepped, only queried.
type World struct {
	mu     sync.Mutex
	space  *cp.Space
	shapes int
}

// NewWorld creates an empty obstacle world.
func NewWorld() *World {
	space := cp.NewSpace()
	return &World{space: space}
}

// Len returns the number of obstacle shapes.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shapes
}

func (w *World) addShape(shape *cp.Shape) {
	shape.SetCollisionType(collisionTypeObstacle)
	shape.SetFriction(0.8)
	w.space.AddShape(shape)
	w.shapes++
}

// AddCircle adds a round obstacle.
func (w *World) AddCircle(center cp.Vector, radius float64) {
	if w == nil || radius <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addShape(cp.NewCircle(w.space.StaticBody, radius, center))
}

// AddBox adds an axis-aligned rectangle spanning min..max.
func (w *World) AddBox(min, max cp.Vector) {
	if w == nil {
		return
	}
	bb := cp.BB{
		L: math.Min(min.X, max.X),
		B: math.Min(min.Y, max.Y),
		R: math.Max(min.X, max.X),
		T: math.Max(min.Y, max.Y),
	}
	if bb.R-bb.L <= 0 || bb.T-bb.B <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addShape(cp.NewBox2(w.space.StaticBody, bb, 0))
}

// AddPolygon adds a convex polygon. Winding may be either direction.
func (w *World) AddPolygon(points []cp.Vector) {
	if w == nil || len(points) < 3 {
		return
	}
	verts := make([]cp.Vector, len(points))
	copy(verts, points)
	if signedArea(verts) < 0 {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addShape(cp.NewPolyShapeRaw(w.space.StaticBody, len(verts), verts, 0))
}

// AddSegment adds a wall segment with the given thickness radius.
func (w *World) AddSegment(a, b cp.Vector, radius float64) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addShape(cp.NewSegment(w.space.StaticBody, a, b, radius))
}

// RayCast returns the first obstacle hit on the segment from->to.
func (w *World) RayCast(from, to cp.Vector) (spatial.Hit, bool) {
	if w == nil {
		return spatial.Hit{}, false
	}
	length := math.Hypot(to.X-from.X, to.Y-from.Y)
	if length == 0 {
		return spatial.Hit{}, false
	}
	w.mu.Lock()
	info := w.space.SegmentQueryFirst(from, to, 0, cp.SHAPE_FILTER_ALL)
	w.mu.Unlock()
	if info.Shape == nil {
		return spatial.Hit{}, false
	}
	return spatial.Hit{
		Point:    info.Point,
		Normal:   info.Normal,
		Distance: info.Alpha * length,
	}, true
}

// Overlaps reports whether a disc of radius around center touches any obstacle.
func (w *World) Overlaps(center cp.Vector, radius float64) bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	info := w.space.PointQueryNearest(center, math.Max(radius, 0), cp.SHAPE_FILTER_ALL)
	w.mu.Unlock()
	return info != nil && info.Shape != nil
}

func signedArea(points []cp.Vector) float64 {
	area := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return area / 2
}
