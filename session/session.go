// Package session is the single owner of a hex grid. It serves generation,
// integration, path and movement-plan requests and queues the resulting
// notifications for the caller to drain.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/hextactics/grid"
	"github.com/milk9111/hextactics/hex"
	"github.com/milk9111/hextactics/navmesh"
	"github.com/milk9111/hextactics/pathfind"
	"github.com/milk9111/hextactics/planner"
	"github.com/milk9111/hextactics/spatial"
)

const tracerName = "github.com/milk9111/hextactics/session"

// ErrNoSpatial is returned by requests that need the spatial collaborator
// when the session has none.
var ErrNoSpatial = errors.New("session: no spatial service")

// Spatial is the physics-side collaborator: mesh containment and routing plus
// obstacle probes. *spatial.Service satisfies it.
type Spatial interface {
	spatial.SpatialQueryProvider
	spatial.MeshSource
}

// Config gathers the tunables of the components the session owns.
type Config struct {
	Grid    grid.Params
	Sampler navmesh.SamplerConfig
	Planner planner.Config
	// Workers bounds the concurrency of FindPaths.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Grid: grid.Params{
			Width:       12,
			Height:      10,
			HexSize:     32,
			Orientation: hex.FlatTop,
		},
		Sampler: navmesh.DefaultSamplerConfig(),
		Planner: planner.DefaultConfig(),
		Workers: 4,
	}
}

// PathResult is a discrete path answer tagged with a request id.
type PathResult struct {
	ID uuid.UUID
	pathfind.Result
}

// PathRequest is one entry of a batch path request.
type PathRequest struct {
	From cp.Vector
	To   cp.Vector
}

// MoveResult is a continuous movement plan tagged with a request id.
type MoveResult struct {
	ID       uuid.UUID
	Duration time.Duration
	planner.Plan
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Session owns the grid and is its only writer.
type Session struct {
	cfg     Config
	spatial Spatial
	log     *slog.Logger
	tracer  trace.Tracer

	grid       *grid.Grid
	sampler    *navmesh.Sampler
	pathfinder *pathfind.Pathfinder
	events     EventQueue
	unsub      func()

	planMu  sync.Mutex
	planner *planner.Planner
}

// New creates a session. sp may be nil; integration and movement plans then
// fail with ErrNoSpatial.
func New(sp Spatial, cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg,
		spatial: sp,
		log:     slog.Default(),
		tracer:  otel.Tracer(tracerName),
		grid:    grid.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Workers < 1 {
		s.cfg.Workers = 1
	}

	s.pathfinder = pathfind.New(s.grid)
	if sp != nil {
		s.sampler = navmesh.NewSampler(s.grid, sp,
			navmesh.WithSamplerConfig(s.cfg.Sampler),
			navmesh.WithLogger(s.log),
		)
		// a non-nil probe cannot fail construction
		s.planner, _ = planner.New(sp, sp,
			planner.WithConfig(s.cfg.Planner),
			planner.WithLogger(s.log),
		)
	}
	s.unsub = s.grid.Subscribe(func(coord hex.Axial, enabled bool) {
		s.events.Push(Event{Kind: EventCellStateChanged, Data: CellStateChanged{Coord: coord, Enabled: enabled}})
	})
	return s
}

// Grid exposes the owned grid for read access.
func (s *Session) Grid() *grid.Grid { return s.grid }

func (s *Session) Config() Config { return s.cfg }

// Generate rebuilds the grid. Invalid parameters are logged and returned
// without touching the existing grid.
func (s *Session) Generate(ctx context.Context, p grid.Params) error {
	_, span := s.tracer.Start(ctx, "session.Generate", trace.WithAttributes(
		attribute.Int("grid.width", p.Width),
		attribute.Int("grid.height", p.Height),
		attribute.Float64("grid.hex_size", p.HexSize),
		attribute.String("grid.orientation", p.Orientation.String()),
	))
	defer span.End()

	if err := s.grid.Generate(p); err != nil {
		s.log.Error("grid generation rejected", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("session: generate: %w", err)
	}
	s.cfg.Grid = p
	ready := GridReady{Width: p.Width, Height: p.Height, Cells: s.grid.Len()}
	s.events.Push(Event{Kind: EventGridReady, Data: ready})
	s.log.Info("grid generated", "width", p.Width, "height", p.Height, "cells", ready.Cells)
	return nil
}

// Integrate syncs the grid against the navigable mesh.
func (s *Session) Integrate(ctx context.Context) (navmesh.Result, error) {
	ctx, span := s.tracer.Start(ctx, "session.Integrate")
	defer span.End()

	if s.sampler == nil {
		s.log.Error("integration requested without a spatial service")
		span.RecordError(ErrNoSpatial)
		return navmesh.Result{}, ErrNoSpatial
	}
	res, err := s.sampler.Integrate(ctx)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, navmesh.ErrNotReady) {
			span.SetStatus(codes.Error, err.Error())
		}
		return res, fmt.Errorf("session: integrate: %w", err)
	}
	span.SetAttributes(
		attribute.Int("navmesh.enabled", res.Enabled),
		attribute.Int("navmesh.disabled", res.Disabled),
		attribute.Int("navmesh.toggled", res.Toggled),
	)
	s.events.Push(Event{Kind: EventIntegrationComplete, Data: IntegrationComplete(res)})
	return res, nil
}

// SetEnabled toggles one cell by coordinate.
func (s *Session) SetEnabled(coord hex.Axial, enabled bool) (bool, error) {
	changed, err := s.grid.SetEnabledAt(coord, enabled)
	if err != nil {
		return false, fmt.Errorf("session: set enabled %v: %w", coord, err)
	}
	return changed, nil
}

// CellAt resolves a world point to a cell.
func (s *Session) CellAt(p cp.Vector) (*grid.Cell, bool) {
	return s.grid.CellAtWorldPosition(p)
}

// FindPath answers a discrete path request between two world points.
func (s *Session) FindPath(ctx context.Context, from, to cp.Vector) PathResult {
	_, span := s.tracer.Start(ctx, "session.FindPath")
	defer span.End()

	out := PathResult{ID: uuid.New(), Result: s.pathfinder.FindPathBetween(from, to)}
	s.annotatePath(span, out)
	return out
}

// FindPaths answers a batch of path requests on up to Workers goroutines,
// each with its own pathfinder. Results keep the request order.
func (s *Session) FindPaths(ctx context.Context, reqs []PathRequest) ([]PathResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.FindPaths", trace.WithAttributes(
		attribute.Int("path.requests", len(reqs)),
	))
	defer span.End()

	out := make([]PathResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	next := make(chan int)

	g.Go(func() error {
		defer close(next)
		for i := range reqs {
			select {
			case next <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(s.cfg.Workers, max(len(reqs), 1))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			pf := pathfind.New(s.grid)
			for i := range next {
				out[i] = PathResult{ID: uuid.New(), Result: pf.FindPathBetween(reqs[i].From, reqs[i].To)}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("session: find paths: %w", err)
	}
	return out, nil
}

func (s *Session) annotatePath(span trace.Span, r PathResult) {
	span.SetAttributes(
		attribute.String("path.id", r.ID.String()),
		attribute.String("path.reason", r.Reason.String()),
		attribute.Int("path.length", len(r.Path)),
		attribute.Int("path.visited", r.Visited),
	)
}

// PlanMove builds a continuous movement plan. Plans run one at a time per
// session; CancelMove abandons the one in progress.
func (s *Session) PlanMove(ctx context.Context, from, to cp.Vector, budget float64) (MoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.PlanMove", trace.WithAttributes(
		attribute.Float64("plan.budget", budget),
	))
	defer span.End()

	if s.planner == nil {
		s.log.Error("movement plan requested without a spatial service")
		span.RecordError(ErrNoSpatial)
		return MoveResult{}, ErrNoSpatial
	}

	s.planMu.Lock()
	defer s.planMu.Unlock()

	began := time.Now()
	plan, err := s.planner.Plan(ctx, from, to, budget)
	res := MoveResult{ID: uuid.New(), Duration: time.Since(began), Plan: plan}
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("session: plan move: %w", err)
	}
	span.SetAttributes(
		attribute.String("plan.id", res.ID.String()),
		attribute.String("plan.failure", plan.Failure.String()),
		attribute.Float64("plan.length", plan.Length),
		attribute.Bool("plan.trimmed", plan.Trimmed),
	)
	if !plan.OK() {
		s.log.Debug("movement plan failed", "id", res.ID, "failure", plan.Failure)
	}
	return res, nil
}

// CancelMove abandons the movement plan in progress, if any.
func (s *Session) CancelMove() {
	if s.planner != nil {
		s.planner.Cancel()
	}
}

// Drain returns queued events in emission order.
func (s *Session) Drain() []Event {
	return s.events.Drain()
}

// End clears the grid and drops pending events and plans. The session can
// generate again afterwards.
func (s *Session) End() {
	s.CancelMove()
	s.grid.Clear()
	s.events.Drain()
	s.log.Info("session ended")
}

// Close detaches the session from its grid.
func (s *Session) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}
