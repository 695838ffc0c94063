// Package astar is a small generic A* used for both hex cells and navmesh polygons.
package astar

import (
	"container/heap"
	"math"
)

// Graph supplies the search space. Cost must be positive and Heuristic must
// not overestimate the remaining cost.
type Graph[N comparable] interface {
	Neighbors(n N) []N
	Cost(a, b N) float64
	Heuristic(n, goal N) float64
}

// Result is the outcome of a search. Path is nil when goal is unreachable.
type Result[N comparable] struct {
	Path     []N
	Cost     float64
	Expanded int
}

// Search runs A* from start to goal. Among open nodes with equal f the one
// with the lower h is expanded first, then the one for which less reports
// true, then the one pushed first. less may be nil.
func Search[N comparable](start, goal N, g Graph[N], less func(a, b N) bool) Result[N] {
	if start == goal {
		return Result[N]{Path: []N{start}}
	}

	open := &openSet[N]{less: less}
	heap.Init(open)

	gScore := map[N]float64{start: 0}
	cameFrom := make(map[N]N)
	closed := make(map[N]bool)

	seq := 0
	push := func(n N, gv float64) {
		h := g.Heuristic(n, goal)
		f := gv + h
		if math.IsNaN(f) || math.IsInf(f, 0) {
			f = gv
		}
		heap.Push(open, &openItem[N]{node: n, f: f, g: gv, h: h, seq: seq})
		seq++
	}
	push(start, 0)

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem[N])
		if closed[cur.node] {
			continue
		}
		if best, ok := gScore[cur.node]; ok && cur.g > best {
			continue
		}
		closed[cur.node] = true
		expanded++

		if cur.node == goal {
			return Result[N]{
				Path:     reconstructPath(cameFrom, start, goal),
				Cost:     cur.g,
				Expanded: expanded,
			}
		}

		for _, nb := range g.Neighbors(cur.node) {
			if closed[nb] {
				continue
			}
			step := g.Cost(cur.node, nb)
			if step <= 0 {
				step = 1
			}
			tentative := cur.g + step
			if old, ok := gScore[nb]; ok && tentative >= old {
				continue
			}
			gScore[nb] = tentative
			cameFrom[nb] = cur.node
			push(nb, tentative)
		}
	}

	return Result[N]{Expanded: expanded}
}

func reconstructPath[N comparable](cameFrom map[N]N, start, goal N) []N {
	path := []N{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		cur = prev
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type openItem[N comparable] struct {
	node  N
	f     float64
	g     float64
	h     float64
	seq   int
	index int
}

type openSet[N comparable] struct {
	items []*openItem[N]
	less  func(a, b N) bool
}

func (o *openSet[N]) Len() int { return len(o.items) }

func (o *openSet[N]) Less(i, j int) bool {
	a, b := o.items[i], o.items[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	if o.less != nil {
		if o.less(a.node, b.node) {
			return true
		}
		if o.less(b.node, a.node) {
			return false
		}
	}
	return a.seq < b.seq
}

func (o *openSet[N]) Swap(i, j int) {
	o.items[i], o.items[j] = o.items[j], o.items[i]
	o.items[i].index = i
	o.items[j].index = j
}

func (o *openSet[N]) Push(x any) {
	item := x.(*openItem[N])
	item.index = len(o.items)
	o.items = append(o.items, item)
}

func (o *openSet[N]) Pop() any {
	old := o.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	o.items = old[:n-1]
	return item
}
