package planner

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/common"
)

// Failure classifies a plan that produced no usable path.
type Failure int

const (
	FailureNone Failure = iota
	FailureNoPath
	FailureObstructed
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNoPath:
		return "no path"
	case FailureObstructed:
		return "obstructed"
	default:
		return fmt.Sprintf("failure(%d)", int(f))
	}
}

// Plan is a finished movement plan.
type Plan struct {
	Points    []cp.Vector
	Length    float64
	RawLength float64
	Budget    float64
	Trimmed   bool
	Failure   Failure
}

// OK reports whether the plan carries a usable path.
func (p Plan) OK() bool {
	return p.Failure == FailureNone && len(p.Points) > 0
}

// Err maps the failure code onto the package sentinels.
func (p Plan) Err() error {
	switch p.Failure {
	case FailureNone:
		return nil
	case FailureNoPath:
		return ErrNoPath
	case FailureObstructed:
		return ErrObstructed
	default:
		return fmt.Errorf("planner: %s", p.Failure)
	}
}

// PositionAt returns the point at the given fraction of the path length.
// Progress is clamped to [0, 1]; 0 and 1 return the end points exactly.
func (p Plan) PositionAt(progress float64) cp.Vector {
	n := len(p.Points)
	if n == 0 {
		return cp.Vector{}
	}
	if progress <= 0 || n == 1 {
		return p.Points[0]
	}
	if progress >= 1 {
		return p.Points[n-1]
	}

	total := common.PolylineLength(p.Points)
	if total <= 0 {
		return p.Points[0]
	}
	target := progress * total
	walked := 0.0
	for i := 1; i < n; i++ {
		d := common.Dist(p.Points[i-1], p.Points[i])
		if walked+d >= target {
			if d == 0 {
				return p.Points[i]
			}
			return common.LerpVec(p.Points[i-1], p.Points[i], (target-walked)/d)
		}
		walked += d
	}
	return p.Points[n-1]
}

// trim cuts points so the polyline is at most budget long. The last point is
// interpolated inside the segment that straddles the budget, so a trimmed
// path measures exactly budget.
func trim(points []cp.Vector, budget float64) ([]cp.Vector, bool) {
	if budget <= 0 || len(points) < 2 {
		return points, false
	}
	walked := 0.0
	for i := 1; i < len(points); i++ {
		d := common.Dist(points[i-1], points[i])
		if walked+d <= budget {
			walked += d
			continue
		}
		t := (budget - walked) / d
		out := append([]cp.Vector(nil), points[:i]...)
		if t > 0 {
			out = append(out, common.LerpVec(points[i-1], points[i], t))
		}
		return out, true
	}
	return points, false
}
