package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/milk9111/hextactics/config"
	"github.com/milk9111/hextactics/level"
	"github.com/milk9111/hextactics/script"
	"github.com/milk9111/hextactics/session"
	"github.com/milk9111/hextactics/spatial"
	"github.com/milk9111/hextactics/telemetry"
)

func main() {
	configPath := flag.String("config", "", "yaml config file (HEXNAV_* env vars override it)")
	levelName := flag.String("level", "arena", "level file or built-in name, or \"generated\" for a noise arena")
	seed := flag.Int64("seed", 0, "seed for -level generated (0 picks one)")
	scriptName := flag.String("script", "", "tengo scenario file or built-in name")
	watch := flag.Bool("watch", false, "reload the level and rerun the scenario when their files change")
	verbose := flag.Bool("verbose", false, "log at debug level")
	flag.Parse()

	if err := run(*configPath, *levelName, *seed, *scriptName, *watch, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "hexnav:", err)
		os.Exit(1)
	}
}

func run(configPath, levelName string, seed int64, scriptName string, watch, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown", "err", err)
		}
	}()

	lvl, err := loadLevel(levelName, seed, cfg)
	if err != nil {
		return err
	}
	svc, err := lvl.Service()
	if err != nil {
		return err
	}

	sessCfg, err := cfg.Session()
	if err != nil {
		return err
	}
	sess := session.New(svc, sessCfg, session.WithLogger(log))
	defer sess.Close()

	if err := prepare(ctx, sess, lvl.Name); err != nil {
		return err
	}

	rt := script.New(sess, script.WithLogger(log))
	if scriptName != "" {
		if err := runScript(ctx, rt, scriptName); err != nil {
			return err
		}
	}

	if !watch {
		return nil
	}
	return watchLoop(ctx, log, svc, sess, rt, levelName, scriptName)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func loadLevel(name string, seed int64, cfg config.Config) (*level.Level, error) {
	if name != "generated" {
		return level.Load(name)
	}
	gen := level.DefaultGenConfig()
	gen.Seed = seed
	gen.CellSize = cfg.Grid.HexSize
	return level.Generate(gen), nil
}

// prepare generates the configured grid and classifies it against the level.
func prepare(ctx context.Context, sess *session.Session, name string) error {
	if err := sess.Generate(ctx, sess.Config().Grid); err != nil {
		return err
	}
	res, err := sess.Integrate(ctx)
	if err != nil {
		return err
	}
	sess.Drain()

	g := sess.Grid()
	fmt.Printf("%s: %s cells, %s navigable, %s blocked (%s%% open)\n",
		name,
		humanize.Comma(int64(g.Len())),
		humanize.Comma(int64(res.Enabled)),
		humanize.Comma(int64(res.Disabled)),
		humanize.FtoaWithDigits(100*float64(res.Enabled)/float64(max(g.Len(), 1)), 1),
	)

	cells := g.EnabledCells()
	if len(cells) < 2 {
		return nil
	}
	from, to := cells[0].Position(), cells[len(cells)-1].Position()
	route := sess.FindPath(ctx, from, to)
	fmt.Printf("route %s: %s, %s cells, %s visited\n",
		route.ID, route.Reason, humanize.Comma(int64(len(route.Path))), humanize.Comma(int64(route.Visited)))

	move, err := sess.PlanMove(ctx, from, to, 0)
	if err != nil {
		return err
	}
	fmt.Printf("move %s: %s, length %s of %s budget, %s points\n",
		move.ID, move.Failure, humanize.Ftoa(move.Length), humanize.Ftoa(move.Budget), humanize.Comma(int64(len(move.Points))))
	return nil
}

func runScript(ctx context.Context, rt *script.Runtime, name string) error {
	src, err := script.LoadScenario(name)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", name, err)
	}
	return rt.Run(ctx, name, src)
}

// watchDirs returns the sorted, deduplicated directories of the paths that
// exist on disk. Built-in names have no directory to watch.
func watchDirs(paths ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// watchLoop reloads the level and reruns the scenario on change. The config
// file is read once at startup and is not watched.
func watchLoop(ctx context.Context, log *slog.Logger, svc *spatial.Service, sess *session.Session, rt *script.Runtime, levelName, scriptName string) error {
	list := watchDirs(levelName, scriptName)
	if len(list) == 0 {
		log.Warn("nothing on disk to watch")
		return nil
	}

	w, err := config.NewWatcher(list...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	log.Info("watching for changes", "dirs", list)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			if err := reload(ctx, svc, sess, rt, path, levelName, scriptName); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				log.Error("reload failed", "path", path, "err", err)
			}
		}
	}
}

func reload(ctx context.Context, svc *spatial.Service, sess *session.Session, rt *script.Runtime, path, levelName, scriptName string) error {
	switch {
	case samePath(path, levelName):
		lvl, err := level.Load(path)
		if err != nil {
			return err
		}
		if err := lvl.Reload(svc); err != nil {
			return err
		}
		sess.End()
		return prepare(ctx, sess, lvl.Name)
	case samePath(path, scriptName):
		return runScript(ctx, rt, path)
	default:
		slog.Debug("ignoring change", "path", path)
		return nil
	}
}

func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
