// Package navmesh holds the navigable polygon mesh, routes across it, and
// classifies hex cells against it.
package navmesh

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/common"
)

// ErrInvalidMesh is returned by NewMesh for malformed polygon data.
var ErrInvalidMesh = errors.New("navmesh: invalid mesh")

// portal is the shared edge crossed when leaving one polygon for another,
// oriented so right and left are as seen from inside the polygon being left.
type portal struct {
	to    int
	left  cp.Vector
	right cp.Vector
}

// Mesh is a set of simple polygons over a shared vertex array. Vertices are in
// a local frame; Anchor moves them into world space.
type Mesh struct {
	anchor    cp.Vector
	vertices  []cp.Vector
	polygons  [][]int
	world     [][]cp.Vector
	bounds    []cp.BB
	centroids []cp.Vector
	links     [][]portal
}

// NewMesh validates the polygon indices and precomputes world-space geometry
// and polygon adjacency. Two polygons are adjacent when they share an edge
// by vertex indices.
func NewMesh(anchor cp.Vector, vertices []cp.Vector, polygons [][]int) (*Mesh, error) {
	m := &Mesh{
		anchor:    anchor,
		vertices:  append([]cp.Vector(nil), vertices...),
		polygons:  make([][]int, len(polygons)),
		world:     make([][]cp.Vector, len(polygons)),
		bounds:    make([]cp.BB, len(polygons)),
		centroids: make([]cp.Vector, len(polygons)),
		links:     make([][]portal, len(polygons)),
	}

	type edgeKey struct{ a, b int }
	type edgeRef struct {
		poly  int
		left  cp.Vector
		right cp.Vector
	}
	edges := make(map[edgeKey][]edgeRef)

	for i, poly := range polygons {
		if len(poly) < 3 {
			return nil, fmt.Errorf("%w: polygon %d has %d vertices", ErrInvalidMesh, i, len(poly))
		}
		pts := make([]cp.Vector, len(poly))
		for k, idx := range poly {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: polygon %d references vertex %d of %d", ErrInvalidMesh, i, idx, len(vertices))
			}
			pts[k] = vertices[idx].Add(anchor)
		}
		m.polygons[i] = append([]int(nil), poly...)
		m.world[i] = pts
		m.bounds[i] = boundsOf(pts)
		m.centroids[i] = centroidOf(pts)

		ccw := signedArea(pts) >= 0
		for k := range poly {
			next := (k + 1) % len(poly)
			a, b := poly[k], poly[next]
			key := edgeKey{a, b}
			if b < a {
				key = edgeKey{b, a}
			}
			// leaving a counter-clockwise polygon through a->b, a is on the right
			ref := edgeRef{poly: i, right: pts[k], left: pts[next]}
			if !ccw {
				ref.right, ref.left = ref.left, ref.right
			}
			edges[key] = append(edges[key], ref)
		}
	}

	for _, refs := range edges {
		for _, from := range refs {
			for _, to := range refs {
				if from.poly == to.poly {
					continue
				}
				m.links[from.poly] = append(m.links[from.poly], portal{to: to.poly, left: from.left, right: from.right})
			}
		}
	}
	for _, ps := range m.links {
		sort.SliceStable(ps, func(a, b int) bool { return ps[a].to < ps[b].to })
	}
	return m, nil
}

// Ready reports whether the mesh has anything to query.
func (m *Mesh) Ready() bool {
	return m != nil && len(m.polygons) > 0
}

func (m *Mesh) Anchor() cp.Vector { return m.anchor }

// Len returns the polygon count.
func (m *Mesh) Len() int {
	if m == nil {
		return 0
	}
	return len(m.polygons)
}

// Polygon returns the world-space points of polygon i.
func (m *Mesh) Polygon(i int) []cp.Vector {
	return append([]cp.Vector(nil), m.world[i]...)
}

// Neighbors returns the polygons sharing an edge with polygon i, ascending.
func (m *Mesh) Neighbors(i int) []int {
	out := make([]int, 0, len(m.links[i]))
	for _, l := range m.links[i] {
		out = append(out, l.to)
	}
	return out
}

// Contains reports whether p lies inside any polygon.
func (m *Mesh) Contains(p cp.Vector) bool {
	_, ok := m.Locate(p)
	return ok
}

// Locate returns the first polygon containing p.
func (m *Mesh) Locate(p cp.Vector) (int, bool) {
	if m == nil {
		return -1, false
	}
	for i := range m.world {
		if m.polygonContains(i, p) {
			return i, true
		}
	}
	return -1, false
}

func (m *Mesh) polygonContains(i int, p cp.Vector) bool {
	bb := m.bounds[i]
	if p.X < bb.L || p.X > bb.R || p.Y < bb.B || p.Y > bb.T {
		return false
	}
	return pointInPolygon(m.world[i], p)
}

// NearestPoint returns p when it is inside the mesh, otherwise the closest
// point on any polygon boundary. An empty mesh returns p.
func (m *Mesh) NearestPoint(p cp.Vector) cp.Vector {
	_, q := m.closest(p)
	return q
}

// closest returns the polygon containing p, or the polygon whose boundary is
// nearest to p along with that boundary point.
func (m *Mesh) closest(p cp.Vector) (int, cp.Vector) {
	if m == nil || len(m.world) == 0 {
		return -1, p
	}
	if i, ok := m.Locate(p); ok {
		return i, p
	}
	best, bestPoint, bestDist := -1, p, math.Inf(1)
	for i, pts := range m.world {
		for k := range pts {
			q := closestOnSegment(pts[k], pts[(k+1)%len(pts)], p)
			if d := q.DistanceSq(p); d < bestDist {
				best, bestPoint, bestDist = i, q, d
			}
		}
	}
	return best, bestPoint
}

// pointInPolygon is the even-odd crossing test.
func pointInPolygon(pts []cp.Vector, p cp.Vector) bool {
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func closestOnSegment(a, b, p cp.Vector) cp.Vector {
	ab := b.Sub(a)
	l2 := ab.LengthSq()
	if l2 < common.Epsilon {
		return a
	}
	t := p.Sub(a).Dot(ab) / l2
	return common.LerpVec(a, b, t)
}

func boundsOf(pts []cp.Vector) cp.BB {
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, p := range pts {
		bb.L = math.Min(bb.L, p.X)
		bb.B = math.Min(bb.B, p.Y)
		bb.R = math.Max(bb.R, p.X)
		bb.T = math.Max(bb.T, p.Y)
	}
	return bb
}

func centroidOf(pts []cp.Vector) cp.Vector {
	var sum cp.Vector
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mult(1 / float64(len(pts)))
}

func signedArea(pts []cp.Vector) float64 {
	area := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return area / 2
}
