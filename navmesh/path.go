package navmesh

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/astar"
	"github.com/milk9111/hextactics/common"
)

// FindPath returns a string-pulled route from one point to another across the
// mesh. Points outside the mesh are first moved to the nearest boundary point.
// It returns nil when the mesh is empty or the two polygons are not connected.
func (m *Mesh) FindPath(from, to cp.Vector) []cp.Vector {
	if !m.Ready() {
		return nil
	}
	startPoly, start := m.closest(from)
	endPoly, end := m.closest(to)
	if startPoly < 0 || endPoly < 0 {
		return nil
	}
	if startPoly == endPoly {
		if start == end {
			return []cp.Vector{start}
		}
		return []cp.Vector{start, end}
	}

	res := astar.Search[int](startPoly, endPoly, polygonGraph{m: m}, func(a, b int) bool { return a < b })
	if res.Path == nil {
		return nil
	}

	portals := make([]portal, 0, len(res.Path)+1)
	portals = append(portals, portal{left: start, right: start})
	for i := 0; i+1 < len(res.Path); i++ {
		p, ok := m.portalBetween(res.Path[i], res.Path[i+1])
		if !ok {
			return nil
		}
		portals = append(portals, p)
	}
	portals = append(portals, portal{left: end, right: end})
	return funnel(portals)
}

func (m *Mesh) portalBetween(from, to int) (portal, bool) {
	for _, l := range m.links[from] {
		if l.to == to {
			return l, true
		}
	}
	return portal{}, false
}

type polygonGraph struct {
	m *Mesh
}

func (g polygonGraph) Neighbors(n int) []int { return g.m.Neighbors(n) }

func (g polygonGraph) Cost(a, b int) float64 {
	return common.Dist(g.m.centroids[a], g.m.centroids[b])
}

func (g polygonGraph) Heuristic(n, goal int) float64 {
	return common.Dist(g.m.centroids[n], g.m.centroids[goal])
}

// funnel pulls the shortest path through a chain of portals. The first and
// last portals are degenerate at the start and end points.
func funnel(portals []portal) []cp.Vector {
	start := portals[0].left
	points := []cp.Vector{start}

	apex, left, right := start, start, start
	apexIdx, leftIdx, rightIdx := 0, 0, 0

	for i := 1; i < len(portals); i++ {
		l, r := portals[i].left, portals[i].right

		if common.Cross(apex, right, r) >= 0 {
			if apex == right || common.Cross(apex, left, r) < 0 {
				right, rightIdx = r, i
			} else {
				apex, apexIdx = left, leftIdx
				points = appendDistinct(points, apex)
				left, right = apex, apex
				leftIdx, rightIdx = apexIdx, apexIdx
				i = apexIdx
				continue
			}
		}

		if common.Cross(apex, left, l) <= 0 {
			if apex == left || common.Cross(apex, right, l) > 0 {
				left, leftIdx = l, i
			} else {
				apex, apexIdx = right, rightIdx
				points = appendDistinct(points, apex)
				left, right = apex, apex
				leftIdx, rightIdx = apexIdx, apexIdx
				i = apexIdx
				continue
			}
		}
	}

	return appendDistinct(points, portals[len(portals)-1].left)
}

func appendDistinct(points []cp.Vector, p cp.Vector) []cp.Vector {
	if len(points) > 0 && common.Dist(points[len(points)-1], p) < common.Epsilon {
		return points
	}
	return append(points, p)
}
