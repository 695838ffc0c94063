package planner

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/common"
)

var (
	cardinalDirs = [4]cp.Vector{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}
	probeDirs    = [8]cp.Vector{
		{X: 1}, {Y: 1}, {X: -1}, {Y: -1},
		{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
		{X: -math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
		{X: -math.Sqrt2 / 2, Y: -math.Sqrt2 / 2},
		{X: math.Sqrt2 / 2, Y: -math.Sqrt2 / 2},
	}
)

// displace moves pt out of obstacle overlap. Nearby hits push the point away
// along each probe ray; when that is not enough, rings around the original
// point are searched for a free spot. The result may still overlap when no
// free candidate exists.
func (p *Planner) displace(pt cp.Vector) cp.Vector {
	radius := p.cfg.AgentRadius
	if !p.probe.Overlaps(pt, radius) {
		return pt
	}

	buffer := p.cfg.ObstacleBuffer
	var push cp.Vector
	if buffer > 0 {
		for _, dir := range probeDirs {
			hit, ok := p.probe.RayCast(pt, pt.Add(dir.Mult(p.cfg.ProbeLength)))
			if !ok || hit.Distance >= buffer {
				continue
			}
			strength := (buffer - hit.Distance) / buffer * buffer * 0.5
			push = push.Sub(dir.Mult(strength))
		}
	}
	moved := pt.Add(push)
	if !p.probe.Overlaps(moved, radius) {
		p.log.Debug("planner point pushed clear", "from", pt, "to", moved)
		return moved
	}

	best, bestClear := moved, p.clearance(moved)
	step := common.Deg2Rad(p.cfg.RingStepDeg)
	slots := 12
	if step > 0 {
		slots = max(1, int(math.Round(2*math.Pi/step)))
	} else {
		step = 2 * math.Pi / float64(slots)
	}
	ringGap := buffer
	if ringGap <= 0 {
		ringGap = radius
	}

	for k := 1; k <= p.cfg.RingCount; k++ {
		r := float64(k) * ringGap
		var (
			ringBest  cp.Vector
			ringClear float64
			found     bool
		)
		for i := 0; i < slots; i++ {
			a := float64(i) * step
			c := cp.Vector{X: pt.X + r*math.Cos(a), Y: pt.Y + r*math.Sin(a)}
			clear := p.clearance(c)
			if p.probe.Overlaps(c, radius) {
				if clear > bestClear {
					best, bestClear = c, clear
				}
				continue
			}
			if !found || clear > ringClear {
				ringBest, ringClear, found = c, clear, true
			}
		}
		if found {
			p.log.Debug("planner point moved to ring", "from", pt, "to", ringBest, "ring", k)
			return ringBest
		}
	}

	p.log.Debug("planner point still colliding", "point", pt, "best", best)
	return best
}

// clearance is the shortest cardinal ray hit distance from c, capped at the
// probe length.
func (p *Planner) clearance(c cp.Vector) float64 {
	clear := p.cfg.ProbeLength
	for _, dir := range cardinalDirs {
		hit, ok := p.probe.RayCast(c, c.Add(dir.Mult(p.cfg.ProbeLength)))
		if ok && hit.Distance < clear {
			clear = hit.Distance
		}
	}
	return clear
}
