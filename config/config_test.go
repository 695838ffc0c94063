package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/hextactics/hex"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hexnav.yaml", `
grid:
  width: 20
  orientation: pointy
  origin: {x: 5, y: -3}
sampler:
  ready_retry_delay: 20ms
planner:
  movement_budget: 500
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Width != 20 || cfg.Grid.Height != Default().Grid.Height {
		t.Fatalf("grid = %+v", cfg.Grid)
	}
	if cfg.Sampler.ReadyRetryDelay != 20*time.Millisecond || cfg.Sampler.Samples != 5 {
		t.Fatalf("sampler = %+v", cfg.Sampler)
	}
	if cfg.Planner.MovementBudget != 500 || cfg.Planner.TurnAngleDeg != 45 {
		t.Fatalf("planner = %+v", cfg.Planner)
	}

	params, err := cfg.GridParams()
	if err != nil {
		t.Fatalf("GridParams: %v", err)
	}
	if params.Orientation != hex.PointyTop || params.Origin.X != 5 || params.Origin.Y != -3 {
		t.Fatalf("params = %+v", params)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hexnav.yaml", "grid:\n  width: 20\n")
	t.Setenv("HEXNAV_GRID_WIDTH", "7")
	t.Setenv("HEXNAV_GRID_ORIGIN_X", "11.5")
	t.Setenv("HEXNAV_PLANNER_AGENT_RADIUS", "3")
	t.Setenv("HEXNAV_SAMPLER_READY_RETRY_DELAY", "5ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Width != 7 || cfg.Grid.Origin.X != 11.5 {
		t.Fatalf("grid = %+v", cfg.Grid)
	}
	if cfg.Planner.AgentRadius != 3 || cfg.Sampler.ReadyRetryDelay != 5*time.Millisecond {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Planner, cfg.Sampler)
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"zero_width":     "grid:\n  width: 0\n",
		"bad_orient":     "grid:\n  orientation: sideways\n",
		"bad_turn_angle": "planner:\n  turn_angle_deg: 200\n",
		"bad_log_level":  "log_level: loud\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "hexnav.yaml", body)
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSessionConfig(t *testing.T) {
	cfg := Default()
	cfg.Pathfind.Workers = 9
	cfg.Planner.RingCount = 5
	sc, err := cfg.Session()
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sc.Workers != 9 || sc.Planner.RingCount != 5 || sc.Sampler.Samples != cfg.Sampler.Samples {
		t.Fatalf("session config = %+v", sc)
	}
}

func TestWatcherReportsYAMLChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "notes.txt", "ignored")
	path := writeFile(t, dir, "level.yaml", "name: test\n")

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("event for %s, want %s", got, path)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for %s", path)
	}
}

func TestIsWatched(t *testing.T) {
	cases := map[string]bool{
		"a.yaml":       true,
		"b.YML":        true,
		"c.tengo":      true,
		"d.json":       false,
		"no_extension": false,
	}
	for path, want := range cases {
		if got := IsWatched(path); got != want {
			t.Errorf("IsWatched(%q) = %v, want %v", path, got, want)
		}
	}
}
