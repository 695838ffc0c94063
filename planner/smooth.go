package planner

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/common"
)

// segment splits raw wherever the heading turns by more than maxTurn radians.
// Every segment after the first starts with the last point of the one before.
func segment(raw []cp.Vector, maxTurn float64) [][]cp.Vector {
	if len(raw) < 2 {
		return [][]cp.Vector{append([]cp.Vector(nil), raw...)}
	}
	segments := [][]cp.Vector{{raw[0], raw[1]}}
	for i := 2; i < len(raw); i++ {
		prev := raw[i-1].Sub(raw[i-2])
		cur := raw[i].Sub(raw[i-1])
		if common.AngleBetween(prev, cur) > maxTurn {
			segments = append(segments, []cp.Vector{raw[i-1]})
		}
		last := len(segments) - 1
		segments[last] = append(segments[last], raw[i])
	}
	return segments
}

// smooth runs a clamped Catmull-Rom spline through pts, emitting samples
// intermediate points per edge. The end points are repeated as phantom
// control points so the curve stops at them without overshoot.
func smooth(pts []cp.Vector, samples int) []cp.Vector {
	if len(pts) < 2 {
		return append([]cp.Vector(nil), pts...)
	}
	if samples < 0 {
		samples = 0
	}
	ctrl := make([]cp.Vector, 0, len(pts)+2)
	ctrl = append(ctrl, pts[0])
	ctrl = append(ctrl, pts...)
	ctrl = append(ctrl, pts[len(pts)-1])

	out := make([]cp.Vector, 0, (len(pts)-1)*(samples+1)+1)
	for i := 1; i+2 < len(ctrl); i++ {
		p0, p1, p2, p3 := ctrl[i-1], ctrl[i], ctrl[i+1], ctrl[i+2]
		out = append(out, p1)
		for k := 1; k <= samples; k++ {
			t := float64(k) / float64(samples+1)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return append(out, pts[len(pts)-1])
}

func catmullRom(p0, p1, p2, p3 cp.Vector, t float64) cp.Vector {
	t2 := t * t
	t3 := t2 * t
	at := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b +
			(-a+c)*t +
			(2*a-5*b+4*c-d)*t2 +
			(-a+3*b-3*c+d)*t3)
	}
	return cp.Vector{
		X: at(p0.X, p1.X, p2.X, p3.X),
		Y: at(p0.Y, p1.Y, p2.Y, p3.Y),
	}
}

// smoothAll smooths each segment and joins them, dropping the repeated
// junction point between consecutive segments.
func smoothAll(segments [][]cp.Vector, samples int) []cp.Vector {
	var out []cp.Vector
	for _, seg := range segments {
		s := smooth(seg, samples)
		if len(out) > 0 && len(s) > 0 && out[len(out)-1] == s[0] {
			s = s[1:]
		}
		out = append(out, s...)
	}
	return out
}

// straightLine samples from->to every step units, always ending at to.
func straightLine(from, to cp.Vector, step float64) []cp.Vector {
	d := common.Dist(from, to)
	if d < common.Epsilon {
		return []cp.Vector{from}
	}
	if step <= 0 {
		return []cp.Vector{from, to}
	}
	out := []cp.Vector{from}
	for walked := step; walked < d; walked += step {
		out = append(out, common.LerpVec(from, to, walked/d))
	}
	return append(out, to)
}
