// Package level describes arenas: the navigable mesh and the obstacles placed
// on it. Levels come from yaml files or from the noise generator.
package level

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/hextactics/navmesh"
	"github.com/milk9111/hextactics/physics"
	"github.com/milk9111/hextactics/spatial"
)

// ErrInvalid wraps level data that cannot be built.
var ErrInvalid = errors.New("level: invalid")

//go:embed *.yaml
var LevelsFS embed.FS

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vector() cp.Vector { return cp.Vector{X: p.X, Y: p.Y} }

// Mesh is the navigable polygon mesh in its local frame.
type Mesh struct {
	Anchor   Point   `yaml:"anchor"`
	Vertices []Point `yaml:"vertices"`
	Polygons [][]int `yaml:"polygons"`
}

// ObstacleKind selects which Obstacle fields apply.
type ObstacleKind string

const (
	ObstacleCircle  ObstacleKind = "circle"
	ObstacleBox     ObstacleKind = "box"
	ObstaclePolygon ObstacleKind = "polygon"
	ObstacleSegment ObstacleKind = "segment"
)

// Obstacle is one static shape. Circles use Center and Radius, boxes Min and
// Max, polygons Points, segments A, B and Radius as thickness.
type Obstacle struct {
	Kind   ObstacleKind `yaml:"kind"`
	Center Point        `yaml:"center,omitempty"`
	Radius float64      `yaml:"radius,omitempty"`
	Min    Point        `yaml:"min,omitempty"`
	Max    Point        `yaml:"max,omitempty"`
	Points []Point      `yaml:"points,omitempty"`
	A      Point        `yaml:"a,omitempty"`
	B      Point        `yaml:"b,omitempty"`
}

// Level is a complete arena description.
type Level struct {
	Name      string     `yaml:"name"`
	Mesh      Mesh       `yaml:"navmesh"`
	Obstacles []Obstacle `yaml:"obstacles"`
}

// Load reads a level from disk, falling back to the built-in levels.
func Load(name string) (*Level, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		data, err = LevelsFS.ReadFile(builtinName(name))
		if err != nil {
			return nil, fmt.Errorf("level: load %s: %w", name, err)
		}
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level: load %s: %w", name, err)
	}
	return lvl, nil
}

// Parse decodes and validates yaml level data.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Builtin lists the embedded level names.
func Builtin() []string {
	entries, err := LevelsFS.ReadDir(".")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return out
}

func builtinName(name string) string {
	base := filepath.Base(filepath.ToSlash(name))
	if filepath.Ext(base) == "" {
		base += ".yaml"
	}
	return base
}

// Validate checks obstacle shapes. Mesh indices are checked by BuildMesh.
func (l *Level) Validate() error {
	var errs []error
	for i, o := range l.Obstacles {
		switch o.Kind {
		case ObstacleCircle:
			if o.Radius <= 0 {
				errs = append(errs, fmt.Errorf("obstacle %d: circle radius %v", i, o.Radius))
			}
		case ObstacleBox:
			if o.Min.X == o.Max.X || o.Min.Y == o.Max.Y {
				errs = append(errs, fmt.Errorf("obstacle %d: empty box", i))
			}
		case ObstaclePolygon:
			if len(o.Points) < 3 {
				errs = append(errs, fmt.Errorf("obstacle %d: polygon with %d points", i, len(o.Points)))
			}
		case ObstacleSegment:
			if o.A == o.B {
				errs = append(errs, fmt.Errorf("obstacle %d: zero-length segment", i))
			}
		default:
			errs = append(errs, fmt.Errorf("obstacle %d: unknown kind %q", i, o.Kind))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// BuildMesh creates the navigable mesh.
func (l *Level) BuildMesh() (*navmesh.Mesh, error) {
	verts := make([]cp.Vector, len(l.Mesh.Vertices))
	for i, v := range l.Mesh.Vertices {
		verts[i] = v.Vector()
	}
	m, err := navmesh.NewMesh(l.Mesh.Anchor.Vector(), verts, l.Mesh.Polygons)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return m, nil
}

// BuildWorld places every obstacle in a fresh physics world.
func (l *Level) BuildWorld() *physics.World {
	w := physics.NewWorld()
	for _, o := range l.Obstacles {
		switch o.Kind {
		case ObstacleCircle:
			w.AddCircle(o.Center.Vector(), o.Radius)
		case ObstacleBox:
			w.AddBox(o.Min.Vector(), o.Max.Vector())
		case ObstaclePolygon:
			pts := make([]cp.Vector, len(o.Points))
			for i, p := range o.Points {
				pts[i] = p.Vector()
			}
			w.AddPolygon(pts)
		case ObstacleSegment:
			w.AddSegment(o.A.Vector(), o.B.Vector(), o.Radius)
		}
	}
	return w
}

// Service builds the mesh and obstacle world and returns them as a ready
// spatial service.
func (l *Level) Service() (*spatial.Service, error) {
	m, err := l.BuildMesh()
	if err != nil {
		return nil, err
	}
	svc := spatial.NewService(m, l.BuildWorld())
	svc.MarkReady()
	return svc, nil
}

// Reload swaps a rebuilt mesh and world into an existing service.
func (l *Level) Reload(svc *spatial.Service) error {
	m, err := l.BuildMesh()
	if err != nil {
		return err
	}
	svc.SetMesh(m)
	svc.SetObstacles(l.BuildWorld())
	svc.MarkReady()
	return nil
}
