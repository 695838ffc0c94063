// Package config loads hexnav settings from yaml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/hextactics/grid"
	"github.com/milk9111/hextactics/hex"
	"github.com/milk9111/hextactics/navmesh"
	"github.com/milk9111/hextactics/planner"
	"github.com/milk9111/hextactics/session"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "HEXNAV_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all hexnav configuration
type Config struct {
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	Grid      GridConfig      `yaml:"grid" envPrefix:"GRID_"`
	Sampler   SamplerConfig   `yaml:"sampler" envPrefix:"SAMPLER_"`
	Pathfind  PathfindConfig  `yaml:"pathfind" envPrefix:"PATHFIND_"`
	Planner   PlannerConfig   `yaml:"planner" envPrefix:"PLANNER_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"OTEL_"`
}

type Point struct {
	X float64 `yaml:"x" env:"X"`
	Y float64 `yaml:"y" env:"Y"`
}

func (p Point) Vector() cp.Vector { return cp.Vector{X: p.X, Y: p.Y} }

// GridConfig describes the generated hex grid
type GridConfig struct {
	Width       int     `yaml:"width" env:"WIDTH"`
	Height      int     `yaml:"height" env:"HEIGHT"`
	HexSize     float64 `yaml:"hex_size" env:"HEX_SIZE"`
	Orientation string  `yaml:"orientation" env:"ORIENTATION"` // flat | pointy
	Origin      Point   `yaml:"origin" envPrefix:"ORIGIN_"`
}

// SamplerConfig controls navmesh classification
type SamplerConfig struct {
	Samples            int           `yaml:"samples" env:"SAMPLES"`
	SampleRadiusFactor float64       `yaml:"sample_radius_factor" env:"SAMPLE_RADIUS_FACTOR"`
	ReadyRetryDelay    time.Duration `yaml:"ready_retry_delay" env:"READY_RETRY_DELAY"`
	ReadyMaxAttempts   int           `yaml:"ready_max_attempts" env:"READY_MAX_ATTEMPTS"`
}

// PathfindConfig controls batch path requests
type PathfindConfig struct {
	Workers int `yaml:"workers" env:"WORKERS"`
}

// PlannerConfig controls continuous movement plans
type PlannerConfig struct {
	TurnAngleDeg     float64 `yaml:"turn_angle_deg" env:"TURN_ANGLE_DEG"`
	SmoothingSamples int     `yaml:"smoothing_samples" env:"SMOOTHING_SAMPLES"`
	FallbackStep     float64 `yaml:"fallback_step" env:"FALLBACK_STEP"`
	AgentRadius      float64 `yaml:"agent_radius" env:"AGENT_RADIUS"`
	ObstacleBuffer   float64 `yaml:"obstacle_buffer" env:"OBSTACLE_BUFFER"`
	ProbeLength      float64 `yaml:"probe_length" env:"PROBE_LENGTH"`
	RingStepDeg      float64 `yaml:"ring_step_deg" env:"RING_STEP_DEG"`
	RingCount        int     `yaml:"ring_count" env:"RING_COUNT"`
	MovementBudget   float64 `yaml:"movement_budget" env:"MOVEMENT_BUDGET"`
}

// TelemetryConfig enables the OTLP trace exporter when Endpoint is set
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// Default returns the built-in settings.
func Default() Config {
	sc := session.DefaultConfig()
	return Config{
		LogLevel: "info",
		Grid: GridConfig{
			Width:       sc.Grid.Width,
			Height:      sc.Grid.Height,
			HexSize:     sc.Grid.HexSize,
			Orientation: sc.Grid.Orientation.String(),
		},
		Sampler: SamplerConfig{
			Samples:            sc.Sampler.Samples,
			SampleRadiusFactor: sc.Sampler.RadiusFactor,
			ReadyRetryDelay:    sc.Sampler.RetryDelay,
			ReadyMaxAttempts:   sc.Sampler.MaxAttempts,
		},
		Pathfind: PathfindConfig{Workers: sc.Workers},
		Planner: PlannerConfig{
			TurnAngleDeg:     sc.Planner.TurnAngleDeg,
			SmoothingSamples: sc.Planner.SmoothingSamples,
			FallbackStep:     sc.Planner.FallbackStep,
			AgentRadius:      sc.Planner.AgentRadius,
			ObstacleBuffer:   sc.Planner.ObstacleBuffer,
			ProbeLength:      sc.Planner.ProbeLength,
			RingStepDeg:      sc.Planner.RingStepDeg,
			RingCount:        sc.Planner.RingCount,
			MovementBudget:   sc.Planner.MovementBudget,
		},
		Telemetry: TelemetryConfig{ServiceName: "hexnav"},
	}
}

// Load reads the yaml file at path over the defaults, applies HEXNAV_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Grid.Width > 0, "grid.width must be positive, got %d", c.Grid.Width)
	check(c.Grid.Height > 0, "grid.height must be positive, got %d", c.Grid.Height)
	check(c.Grid.HexSize > 0, "grid.hex_size must be positive, got %v", c.Grid.HexSize)
	if _, err := hex.ParseOrientation(c.Grid.Orientation); err != nil {
		errs = append(errs, err)
	}

	check(c.Sampler.Samples >= 0, "sampler.samples must not be negative, got %d", c.Sampler.Samples)
	check(c.Sampler.SampleRadiusFactor > 0, "sampler.sample_radius_factor must be positive, got %v", c.Sampler.SampleRadiusFactor)
	check(c.Sampler.ReadyRetryDelay >= 0, "sampler.ready_retry_delay must not be negative")
	check(c.Sampler.ReadyMaxAttempts > 0, "sampler.ready_max_attempts must be positive, got %d", c.Sampler.ReadyMaxAttempts)

	check(c.Pathfind.Workers > 0, "pathfind.workers must be positive, got %d", c.Pathfind.Workers)

	p := c.Planner
	check(p.TurnAngleDeg > 0 && p.TurnAngleDeg < 180, "planner.turn_angle_deg must be in (0, 180), got %v", p.TurnAngleDeg)
	check(p.SmoothingSamples >= 0, "planner.smoothing_samples must not be negative")
	check(p.FallbackStep > 0, "planner.fallback_step must be positive, got %v", p.FallbackStep)
	check(p.AgentRadius >= 0, "planner.agent_radius must not be negative")
	check(p.ObstacleBuffer > 0, "planner.obstacle_buffer must be positive, got %v", p.ObstacleBuffer)
	check(p.ProbeLength > 0, "planner.probe_length must be positive, got %v", p.ProbeLength)
	check(p.RingStepDeg > 0 && p.RingStepDeg <= 360, "planner.ring_step_deg must be in (0, 360], got %v", p.RingStepDeg)
	check(p.RingCount >= 0, "planner.ring_count must not be negative")
	check(p.MovementBudget >= 0, "planner.movement_budget must not be negative")

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// GridParams converts the grid section into a generation request.
func (c Config) GridParams() (grid.Params, error) {
	o, err := hex.ParseOrientation(c.Grid.Orientation)
	if err != nil {
		return grid.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return grid.Params{
		Width:       c.Grid.Width,
		Height:      c.Grid.Height,
		HexSize:     c.Grid.HexSize,
		Orientation: o,
		Origin:      c.Grid.Origin.Vector(),
	}, nil
}

func (c Config) SamplerConfig() navmesh.SamplerConfig {
	return navmesh.SamplerConfig{
		Samples:      c.Sampler.Samples,
		RadiusFactor: c.Sampler.SampleRadiusFactor,
		RetryDelay:   c.Sampler.ReadyRetryDelay,
		MaxAttempts:  c.Sampler.ReadyMaxAttempts,
	}
}

func (c Config) PlannerConfig() planner.Config {
	return planner.Config(c.Planner)
}

// Session assembles the session configuration.
func (c Config) Session() (session.Config, error) {
	params, err := c.GridParams()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Grid:    params,
		Sampler: c.SamplerConfig(),
		Planner: c.PlannerConfig(),
		Workers: c.Pathfind.Workers,
	}, nil
}
