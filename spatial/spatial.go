// Package spatial defines the query contracts the grid sampler and the
// movement planner consume, and a Service that composes a navigable mesh with
// an obstacle world behind them.
package spatial

import (
	"sync"

	"github.com/jakecoffman/cp"
)

// Hit is the nearest intersection of a ray with an obstacle.
type Hit struct {
	Point    cp.Vector
	Normal   cp.Vector
	Distance float64
}

// MeshQuerier answers point queries against the navigable mesh.
type MeshQuerier interface {
	Contains(p cp.Vector) bool
	NearestPoint(p cp.Vector) cp.Vector
}

// MeshPather produces a continuous path across the navigable mesh.
type MeshPather interface {
	FindPath(from, to cp.Vector) []cp.Vector
}

// MeshSource is a MeshPather whose mesh can be detached at runtime. HasMesh
// reports whether one is currently attached.
type MeshSource interface {
	MeshPather
	HasMesh() bool
}

// ObstacleQuerier answers ray and shape queries against obstacles.
type ObstacleQuerier interface {
	RayCast(from, to cp.Vector) (Hit, bool)
	Overlaps(center cp.Vector, radius float64) bool
}

// SpatialQueryProvider is everything the session layer needs from the
// physics side: readiness, mesh point queries and obstacle probes.
type SpatialQueryProvider interface {
	Ready() bool
	MeshQuerier
	ObstacleQuerier
}

// NavigableMeshProvider serves continuous-space paths once ready.
type NavigableMeshProvider interface {
	Ready() bool
	MeshPather
}

// Mesh is what Service needs from a navigable mesh implementation.
type Mesh interface {
	MeshQuerier
	MeshPather
}

// Service composes a mesh and an obstacle world. It reports ready once both
// are attached and MarkReady has been called. Either side may be swapped at
// runtime; queries against a missing side miss.
type Service struct {
	mu        sync.RWMutex
	mesh      Mesh
	obstacles ObstacleQuerier
	ready     bool
}

func NewService(mesh Mesh, obstacles ObstacleQuerier) *Service {
	return &Service{mesh: mesh, obstacles: obstacles}
}

// SetMesh replaces the mesh and clears readiness.
func (s *Service) SetMesh(m Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mesh = m
	s.ready = false
}

// SetObstacles replaces the obstacle world and clears readiness.
func (s *Service) SetObstacles(o ObstacleQuerier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obstacles = o
	s.ready = false
}

// MarkReady flags the service as initialised.
func (s *Service) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

func (s *Service) Ready() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready && s.mesh != nil && s.obstacles != nil
}

// HasMesh reports whether a mesh is attached, ready or not.
func (s *Service) HasMesh() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mesh != nil
}

func (s *Service) Contains(p cp.Vector) bool {
	s.mu.RLock()
	m := s.mesh
	s.mu.RUnlock()
	if m == nil {
		return false
	}
	return m.Contains(p)
}

func (s *Service) NearestPoint(p cp.Vector) cp.Vector {
	s.mu.RLock()
	m := s.mesh
	s.mu.RUnlock()
	if m == nil {
		return p
	}
	return m.NearestPoint(p)
}

func (s *Service) FindPath(from, to cp.Vector) []cp.Vector {
	s.mu.RLock()
	m := s.mesh
	s.mu.RUnlock()
	if m == nil {
		return nil
	}
	return m.FindPath(from, to)
}

func (s *Service) RayCast(from, to cp.Vector) (Hit, bool) {
	s.mu.RLock()
	o := s.obstacles
	s.mu.RUnlock()
	if o == nil {
		return Hit{}, false
	}
	return o.RayCast(from, to)
}

func (s *Service) Overlaps(center cp.Vector, radius float64) bool {
	s.mu.RLock()
	o := s.obstacles
	s.mu.RUnlock()
	if o == nil {
		return false
	}
	return o.Overlaps(center, radius)
}
