// Package planner builds smooth, budget-limited movement paths across
// continuous space for turn-based agents.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/common"
	"github.com/milk9111/hextactics/spatial"
)

var (
	ErrCancelled  = errors.New("planner: cancelled")
	ErrNoPath     = errors.New("planner: no path")
	ErrObstructed = errors.New("planner: path obstructed")
	ErrNoProbe    = errors.New("planner: no obstacle probe")
)

// Config holds the planner tunables. Angles are in degrees, distances in
// world units.
type Config struct {
	TurnAngleDeg     float64
	SmoothingSamples int
	FallbackStep     float64
	AgentRadius      float64
	ObstacleBuffer   float64
	ProbeLength      float64
	RingStepDeg      float64
	RingCount        int
	// MovementBudget applies when Plan is called without a budget. Zero or
	// less means unlimited.
	MovementBudget float64
}

func DefaultConfig() Config {
	return Config{
		TurnAngleDeg:     45,
		SmoothingSamples: 4,
		FallbackStep:     16,
		AgentRadius:      8,
		ObstacleBuffer:   24,
		ProbeLength:      48,
		RingStepDeg:      30,
		RingCount:        3,
		MovementBudget:   320,
	}
}

// Planner turns a start and destination into a Plan. A Planner may be
// cancelled from another goroutine but must not run two Plan calls at once;
// use one Planner per concurrent caller.
type Planner struct {
	mesh  spatial.MeshSource
	probe spatial.ObstacleQuerier
	cfg   Config
	log   *slog.Logger

	generation atomic.Uint64

	mu      sync.Mutex
	current *Plan
}

type Option func(*Planner)

func WithConfig(cfg Config) Option {
	return func(p *Planner) { p.cfg = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a planner. While mesh is nil or has no mesh attached, raw paths
// are straight lines sampled every FallbackStep.
func New(mesh spatial.MeshSource, probe spatial.ObstacleQuerier, opts ...Option) (*Planner, error) {
	if probe == nil {
		return nil, ErrNoProbe
	}
	p := &Planner{
		mesh:  mesh,
		probe: probe,
		cfg:   DefaultConfig(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Planner) Config() Config { return p.cfg }

// Cancel abandons any plan in progress and discards the last finished plan.
func (p *Planner) Cancel() {
	p.generation.Add(1)
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

// Current returns the last finished plan, if it has not been cancelled.
func (p *Planner) Current() (Plan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Plan{}, false
	}
	return *p.current, true
}

// Plan computes a path from start to dest no longer than budget. A budget of
// zero or less falls back to the configured movement budget.
//
// Failures to find or validate a route come back as a Plan with a Failure
// code and a nil error. The error is only set when planning was cancelled.
func (p *Planner) Plan(ctx context.Context, start, dest cp.Vector, budget float64) (Plan, error) {
	gen := p.generation.Load()
	cancelled := func() error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if p.generation.Load() != gen {
			return ErrCancelled
		}
		return nil
	}
	if budget <= 0 {
		budget = p.cfg.MovementBudget
	}
	plan := Plan{Budget: budget}

	raw := p.rawPath(start, dest)
	if err := cancelled(); err != nil {
		return Plan{}, err
	}
	if len(raw) == 0 {
		plan.Failure = FailureNoPath
		p.log.Debug("planner found no raw path", "start", start, "dest", dest)
		return p.finish(plan, gen), nil
	}
	plan.RawLength = common.PolylineLength(raw)

	segments := segment(raw, common.Deg2Rad(p.cfg.TurnAngleDeg))
	points := smoothAll(segments, p.cfg.SmoothingSamples)

	for i := range points {
		if err := cancelled(); err != nil {
			return Plan{}, err
		}
		points[i] = p.displace(points[i])
	}

	points, plan.Trimmed = trim(points, budget)
	plan.Points = points
	plan.Length = common.PolylineLength(points)

	if err := cancelled(); err != nil {
		return Plan{}, err
	}
	if i, hit, blocked := p.validate(points); blocked {
		plan.Failure = FailureObstructed
		p.log.Debug("planner path obstructed", "segment", i, "hit", hit.Point)
	}
	return p.finish(plan, gen), nil
}

// finish records the plan unless a cancel raced with it.
func (p *Planner) finish(plan Plan, gen uint64) Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation.Load() == gen {
		p.current = &plan
	}
	return plan
}

func (p *Planner) rawPath(start, dest cp.Vector) []cp.Vector {
	if p.mesh == nil || !p.mesh.HasMesh() {
		return straightLine(start, dest, p.cfg.FallbackStep)
	}
	return p.mesh.FindPath(start, dest)
}

// validate casts a ray along every segment and reports the first one that
// hits an obstacle.
func (p *Planner) validate(points []cp.Vector) (int, spatial.Hit, bool) {
	for i := 1; i < len(points); i++ {
		if common.Dist(points[i-1], points[i]) < common.Epsilon {
			continue
		}
		if hit, ok := p.probe.RayCast(points[i-1], points[i]); ok {
			return i - 1, hit, true
		}
	}
	return 0, spatial.Hit{}, false
}
