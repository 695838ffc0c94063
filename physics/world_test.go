package physics

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestRayCast(t *testing.T) {
	cases := []struct {
		name     string
		build    func(w *World)
		wantHit  bool
		wantDist float64
	}{
		{"empty", func(w *World) {}, false, 0},
		{"circle", func(w *World) { w.AddCircle(cp.Vector{X: 50}, 10) }, true, 40},
		{"box", func(w *World) { w.AddBox(cp.Vector{X: 40, Y: -10}, cp.Vector{X: 60, Y: 10}) }, true, 40},
		{"box_swapped_corners", func(w *World) { w.AddBox(cp.Vector{X: 60, Y: 10}, cp.Vector{X: 40, Y: -10}) }, true, 40},
		{"clockwise_polygon", func(w *World) {
			w.AddPolygon([]cp.Vector{{X: 30, Y: -10}, {X: 30, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: -10}})
		}, true, 30},
		{"segment", func(w *World) { w.AddSegment(cp.Vector{X: 70, Y: -20}, cp.Vector{X: 70, Y: 20}, 1) }, true, 69},
		{"off_axis", func(w *World) { w.AddCircle(cp.Vector{X: 50, Y: 40}, 10) }, false, 0},
		{"nearest_wins", func(w *World) {
			w.AddCircle(cp.Vector{X: 80}, 5)
			w.AddCircle(cp.Vector{X: 30}, 5)
		}, true, 25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			c.build(w)
			hit, ok := w.RayCast(cp.Vector{}, cp.Vector{X: 100})
			if ok != c.wantHit {
				t.Fatalf("hit = %v, want %v", ok, c.wantHit)
			}
			if ok && math.Abs(hit.Distance-c.wantDist) > 1e-6 {
				t.Fatalf("distance %v, want %v", hit.Distance, c.wantDist)
			}
			if ok && math.Abs(hit.Point.X-c.wantDist) > 1e-6 {
				t.Fatalf("hit point %v", hit.Point)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	w := NewWorld()
	w.AddCircle(cp.Vector{X: 50}, 10)
	cases := []struct {
		p      cp.Vector
		radius float64
		want   bool
	}{
		{cp.Vector{X: 25}, 10, false},
		{cp.Vector{X: 25}, 20, true},
		{cp.Vector{X: 50}, 1, true},
		{cp.Vector{X: 50, Y: 100}, 8, false},
	}
	for _, c := range cases {
		if got := w.Overlaps(c.p, c.radius); got != c.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", c.p, c.radius, got, c.want)
		}
	}
}

func TestDegenerateShapesIgnored(t *testing.T) {
	w := NewWorld()
	w.AddCircle(cp.Vector{}, 0)
	w.AddBox(cp.Vector{X: 1, Y: 1}, cp.Vector{X: 1, Y: 5})
	w.AddPolygon([]cp.Vector{{X: 0}, {X: 1}})
	if w.Len() != 0 {
		t.Fatalf("Len = %d, want 0", w.Len())
	}
	var nilWorld *World
	if _, ok := nilWorld.RayCast(cp.Vector{}, cp.Vector{X: 1}); ok || nilWorld.Overlaps(cp.Vector{}, 1) {
		t.Fatalf("nil world reported obstacles")
	}
}
