package navmesh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hextactics/grid"
)

var (
	// ErrNotReady means the query service never reported ready within the
	// configured attempts. It is a transient condition; callers may retry.
	ErrNotReady = errors.New("navmesh: query service not ready")
	ErrNoGrid   = errors.New("navmesh: no grid")
	ErrNoQuery  = errors.New("navmesh: no query service")
)

// Query is the containment side of the spatial query service.
type Query interface {
	Ready() bool
	Contains(p cp.Vector) bool
}

// SamplerConfig tunes cell classification and the readiness wait.
type SamplerConfig struct {
	// Samples is the ring sample count tried when the center misses. Values
	// of 1 or less disable ring sampling.
	Samples      int
	RadiusFactor float64
	RetryDelay   time.Duration
	MaxAttempts  int
}

func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Samples:      5,
		RadiusFactor: 0.7,
		RetryDelay:   50 * time.Millisecond,
		MaxAttempts:  10,
	}
}

// Result summarises one integration pass.
type Result struct {
	Enabled  int
	Disabled int
	Toggled  int
}

// Sampler classifies grid cells as navigable against a mesh query and syncs
// the grid's enabled flags to match.
type Sampler struct {
	grid  *grid.Grid
	query Query
	cfg   SamplerConfig
	log   *slog.Logger
}

type SamplerOption func(*Sampler)

func WithSamplerConfig(cfg SamplerConfig) SamplerOption {
	return func(s *Sampler) { s.cfg = cfg }
}

func WithLogger(l *slog.Logger) SamplerOption {
	return func(s *Sampler) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSampler(g *grid.Grid, q Query, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		grid:  g,
		query: q,
		cfg:   DefaultSamplerConfig(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxAttempts < 1 {
		s.cfg.MaxAttempts = 1
	}
	if s.cfg.RadiusFactor <= 0 {
		s.cfg.RadiusFactor = DefaultSamplerConfig().RadiusFactor
	}
	return s
}

// Navigable classifies a single cell. The center is tested first; on a miss
// the cell still counts when strictly more than half of the ring samples are
// inside the mesh.
func (s *Sampler) Navigable(c *grid.Cell) bool {
	if c == nil || s.grid == nil || s.query == nil {
		return false
	}
	center := c.Position()
	if s.query.Contains(center) {
		return true
	}
	n := s.cfg.Samples
	if n <= 1 {
		return false
	}
	radius := s.cfg.RadiusFactor * s.hexSize()
	contained := 0
	for i := 0; i < n; i++ {
		if s.query.Contains(ringSample(center, radius, i, n)) {
			contained++
		}
	}
	return contained > n/2
}

func ringSample(center cp.Vector, radius float64, i, n int) cp.Vector {
	angle := 2 * math.Pi * float64(i) / float64(n)
	return cp.Vector{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

func (s *Sampler) hexSize() float64 {
	return s.grid.Layout().Size
}

// WaitReady polls the query service with a fixed delay until it reports ready
// or the attempts run out.
func (s *Sampler) WaitReady(ctx context.Context) error {
	if s.query == nil {
		return ErrNoQuery
	}
	if s.query.Ready() {
		return nil
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if s.query.Ready() {
			return struct{}{}, nil
		}
		return struct{}{}, ErrNotReady
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(s.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.log.Debug("navmesh query not ready", "retry_in", next)
		}),
	)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.log.Warn("navmesh query never became ready", "attempts", s.cfg.MaxAttempts, "delay", s.cfg.RetryDelay)
	return fmt.Errorf("%w after %d attempts", ErrNotReady, s.cfg.MaxAttempts)
}

// Classify waits for readiness and returns the computed navigability of every
// cell, indexed by cell index, without touching the grid.
func (s *Sampler) Classify(ctx context.Context) ([]bool, error) {
	if s.grid == nil {
		return nil, ErrNoGrid
	}
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	cells := s.grid.Cells()
	out := make([]bool, len(cells))
	for _, c := range cells {
		out[c.Index] = s.Navigable(c)
	}
	return out, nil
}

// Integrate classifies every cell and toggles only those whose enabled flag
// disagrees with the classification. Running it twice against the same mesh
// toggles nothing the second time.
func (s *Sampler) Integrate(ctx context.Context) (Result, error) {
	navigable, err := s.Classify(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, c := range s.grid.Cells() {
		want := navigable[c.Index]
		if c.Enabled() != want {
			changed, err := s.grid.SetEnabled(c, want)
			if err != nil {
				return res, fmt.Errorf("navmesh: integrate %s: %w", c, err)
			}
			if changed {
				res.Toggled++
			}
		}
		if want {
			res.Enabled++
		} else {
			res.Disabled++
		}
	}

	s.log.Info("navmesh integration complete",
		"enabled", res.Enabled,
		"disabled", res.Disabled,
		"toggled", res.Toggled,
	)
	return res, nil
}
