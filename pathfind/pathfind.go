// Package pathfind finds cell paths across the enabled part of a hex grid.
package pathfind

import (
	"fmt"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/astar"
	"github.com/milk9111/hextactics/grid"
	"github.com/milk9111/hextactics/hex"
)

// Reason explains a path result. Everything except ReasonFound comes with
// an empty path.
type Reason int

const (
	ReasonFound Reason = iota
	ReasonNoGrid
	ReasonStartMissing
	ReasonGoalMissing
	ReasonStartDisabled
	ReasonGoalDisabled
	ReasonNoRoute
)

func (r Reason) String() string {
	switch r {
	case ReasonFound:
		return "found"
	case ReasonNoGrid:
		return "no grid"
	case ReasonStartMissing:
		return "start outside grid"
	case ReasonGoalMissing:
		return "goal outside grid"
	case ReasonStartDisabled:
		return "start disabled"
	case ReasonGoalDisabled:
		return "goal disabled"
	case ReasonNoRoute:
		return "no route"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Result is a discrete path plus search metadata.
type Result struct {
	Path     []*grid.Cell
	Reason   Reason
	Visited  int
	Duration time.Duration
}

// Found reports whether Path holds a route.
func (r Result) Found() bool { return r.Reason == ReasonFound && len(r.Path) > 0 }

// Coords returns the axial coordinates along the path.
func (r Result) Coords() []hex.Axial {
	out := make([]hex.Axial, 0, len(r.Path))
	for _, c := range r.Path {
		out = append(out, c.Coord)
	}
	return out
}

// Pathfinder searches a grid. It keeps no state between calls; open, closed
// and score sets are rebuilt by every FindPath.
type Pathfinder struct {
	grid *grid.Grid
}

func New(g *grid.Grid) *Pathfinder {
	return &Pathfinder{grid: g}
}

// FindPath returns the shortest path of enabled cells from start to goal,
// both included. Ties between equally good candidates go to the one closer
// to the goal, then to the lower (q, r).
func (p *Pathfinder) FindPath(start, goal *grid.Cell) Result {
	began := time.Now()
	res := p.findPath(start, goal)
	res.Duration = time.Since(began)
	return res
}

// FindPathBetween resolves world points to cells and searches between them.
func (p *Pathfinder) FindPathBetween(from, to cp.Vector) Result {
	began := time.Now()
	if p == nil || p.grid == nil {
		return Result{Reason: ReasonNoGrid, Duration: time.Since(began)}
	}
	start, ok := p.grid.CellAtWorldPosition(from)
	if !ok {
		return Result{Reason: ReasonStartMissing, Duration: time.Since(began)}
	}
	goal, ok := p.grid.CellAtWorldPosition(to)
	if !ok {
		return Result{Reason: ReasonGoalMissing, Duration: time.Since(began)}
	}
	res := p.findPath(start, goal)
	res.Duration = time.Since(began)
	return res
}

func (p *Pathfinder) findPath(start, goal *grid.Cell) Result {
	if p == nil || p.grid == nil {
		return Result{Reason: ReasonNoGrid}
	}
	if start == nil {
		return Result{Reason: ReasonStartMissing}
	}
	if goal == nil {
		return Result{Reason: ReasonGoalMissing}
	}
	if owned, ok := p.grid.CellAtCoords(start.Coord); !ok || owned != start {
		return Result{Reason: ReasonStartMissing}
	}
	if owned, ok := p.grid.CellAtCoords(goal.Coord); !ok || owned != goal {
		return Result{Reason: ReasonGoalMissing}
	}
	if !start.Enabled() {
		return Result{Reason: ReasonStartDisabled}
	}
	if !goal.Enabled() {
		return Result{Reason: ReasonGoalDisabled}
	}

	out := astar.Search[*grid.Cell](start, goal, cellGraph{g: p.grid}, func(a, b *grid.Cell) bool {
		return a.Coord.Less(b.Coord)
	})
	if out.Path == nil {
		return Result{Reason: ReasonNoRoute, Visited: out.Expanded}
	}
	return Result{Path: out.Path, Reason: ReasonFound, Visited: out.Expanded}
}

// cellGraph exposes enabled cells with uniform step cost.
type cellGraph struct {
	g *grid.Grid
}

func (c cellGraph) Neighbors(n *grid.Cell) []*grid.Cell {
	return c.g.EnabledNeighbors(n)
}

func (c cellGraph) Cost(a, b *grid.Cell) float64 { return 1 }

func (c cellGraph) Heuristic(n, goal *grid.Cell) float64 {
	return float64(hex.DistanceCube(n.Cube, goal.Cube))
}
