// Package script runs tengo scenario scripts against a session. Scripts see a
// global `nav` map of functions wrapping the session requests.
package script

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/hextactics/grid"
	"github.com/milk9111/hextactics/hex"
	"github.com/milk9111/hextactics/planner"
	"github.com/milk9111/hextactics/session"
)

//go:embed scenarios/*.tengo
var ScenariosFS embed.FS

// LoadScenario reads a script from disk, falling back to the built-in
// scenarios.
func LoadScenario(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return ScenariosFS.ReadFile(cleanScenarioPath(name))
}

func cleanScenarioPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "scenarios/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".tengo"
	}
	return fmt.Sprintf("scenarios/%s", s)
}

// Runtime executes scenarios. Plans created by a script are kept by id so
// later calls can sample them.
type Runtime struct {
	session *session.Session
	log     *slog.Logger
	out     io.Writer
	plans   map[string]planner.Plan
}

type Option func(*Runtime)

func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.log = l
		}
	}
}

// WithOutput sets where nav.print writes.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		if w != nil {
			rt.out = w
		}
	}
}

func New(s *session.Session, opts ...Option) *Runtime {
	rt := &Runtime{
		session: s,
		log:     slog.Default(),
		out:     os.Stdout,
		plans:   make(map[string]planner.Plan),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run compiles and runs src until it finishes or ctx is done.
func (rt *Runtime) Run(ctx context.Context, name string, src []byte) error {
	script := tengo.NewScript(src)
	if err := script.Add("nav", rt.navModule(ctx)); err != nil {
		return fmt.Errorf("script: %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("script: compile %s: %w", name, err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("script: run %s: %w", name, err)
	}
	return nil
}

func (rt *Runtime) navModule(ctx context.Context) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["generate"] = &tengo.UserFunction{Name: "generate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		w, ok1 := toInt(args[0])
		h, ok2 := toInt(args[1])
		size, ok3 := toFloat(args[2])
		if !ok1 || !ok2 || !ok3 {
			return nil, tengo.ErrInvalidArgumentType{Name: "width/height/size", Expected: "number", Found: args[0].TypeName()}
		}
		orientation := hex.FlatTop
		if len(args) > 3 {
			o, err := hex.ParseOrientation(objectAsString(args[3]))
			if err != nil {
				return errorObject(err), nil
			}
			orientation = o
		}
		err := rt.session.Generate(ctx, grid.Params{Width: w, Height: h, HexSize: size, Orientation: orientation})
		if err != nil {
			return errorObject(err), nil
		}
		return tengo.TrueValue, nil
	}}

	values["integrate"] = &tengo.UserFunction{Name: "integrate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		res, err := rt.session.Integrate(ctx)
		if err != nil {
			return errorObject(err), nil
		}
		return &tengo.Map{Value: map[string]tengo.Object{
			"enabled":  &tengo.Int{Value: int64(res.Enabled)},
			"disabled": &tengo.Int{Value: int64(res.Disabled)},
			"toggled":  &tengo.Int{Value: int64(res.Toggled)},
		}}, nil
	}}

	values["set_enabled"] = &tengo.UserFunction{Name: "set_enabled", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		q, ok1 := toInt(args[0])
		r, ok2 := toInt(args[1])
		if !ok1 || !ok2 {
			return nil, tengo.ErrInvalidArgumentType{Name: "q/r", Expected: "int", Found: args[0].TypeName()}
		}
		changed, err := rt.session.SetEnabled(hex.Axial{Q: q, R: r}, !args[2].IsFalsy())
		if err != nil {
			return errorObject(err), nil
		}
		return boolObject(changed), nil
	}}

	values["cell_at"] = &tengo.UserFunction{Name: "cell_at", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p, err := pointArgs(args, 0)
		if err != nil {
			return nil, err
		}
		c, ok := rt.session.CellAt(p)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		pos := c.Position()
		return &tengo.Map{Value: map[string]tengo.Object{
			"q":       &tengo.Int{Value: int64(c.Coord.Q)},
			"r":       &tengo.Int{Value: int64(c.Coord.R)},
			"index":   &tengo.Int{Value: int64(c.Index)},
			"enabled": boolObject(c.Enabled()),
			"x":       &tengo.Float{Value: pos.X},
			"y":       &tengo.Float{Value: pos.Y},
		}}, nil
	}}

	values["find_path"] = &tengo.UserFunction{Name: "find_path", Value: func(args ...tengo.Object) (tengo.Object, error) {
		from, err := pointArgs(args, 0)
		if err != nil {
			return nil, err
		}
		to, err := pointArgs(args, 2)
		if err != nil {
			return nil, err
		}
		res := rt.session.FindPath(ctx, from, to)
		cells := make([]tengo.Object, 0, len(res.Path))
		for _, a := range res.Coords() {
			cells = append(cells, &tengo.Array{Value: []tengo.Object{
				&tengo.Int{Value: int64(a.Q)},
				&tengo.Int{Value: int64(a.R)},
			}})
		}
		return &tengo.Map{Value: map[string]tengo.Object{
			"id":      &tengo.String{Value: res.ID.String()},
			"found":   boolObject(res.Found()),
			"reason":  &tengo.String{Value: res.Reason.String()},
			"visited": &tengo.Int{Value: int64(res.Visited)},
			"cells":   &tengo.Array{Value: cells},
		}}, nil
	}}

	values["plan"] = &tengo.UserFunction{Name: "plan", Value: func(args ...tengo.Object) (tengo.Object, error) {
		from, err := pointArgs(args, 0)
		if err != nil {
			return nil, err
		}
		to, err := pointArgs(args, 2)
		if err != nil {
			return nil, err
		}
		budget := 0.0
		if len(args) > 4 {
			if b, ok := toFloat(args[4]); ok {
				budget = b
			}
		}
		res, err := rt.session.PlanMove(ctx, from, to, budget)
		if err != nil {
			return errorObject(err), nil
		}
		rt.plans[res.ID.String()] = res.Plan
		points := make([]tengo.Object, 0, len(res.Points))
		for _, p := range res.Points {
			points = append(points, vectorObject(p))
		}
		return &tengo.Map{Value: map[string]tengo.Object{
			"id":      &tengo.String{Value: res.ID.String()},
			"ok":      boolObject(res.OK()),
			"failure": &tengo.String{Value: res.Failure.String()},
			"length":  &tengo.Float{Value: res.Length},
			"trimmed": boolObject(res.Trimmed),
			"points":  &tengo.Array{Value: points},
		}}, nil
	}}

	values["position_at"] = &tengo.UserFunction{Name: "position_at", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		id := objectAsString(args[0])
		if _, err := uuid.Parse(id); err != nil {
			return errorObject(fmt.Errorf("bad plan id %q", id)), nil
		}
		plan, ok := rt.plans[id]
		if !ok {
			return tengo.UndefinedValue, nil
		}
		progress, ok := toFloat(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "progress", Expected: "number", Found: args[1].TypeName()}
		}
		return vectorObject(plan.PositionAt(progress)), nil
	}}

	values["events"] = &tengo.UserFunction{Name: "events", Value: func(args ...tengo.Object) (tengo.Object, error) {
		events := rt.session.Drain()
		out := make([]tengo.Object, 0, len(events))
		for _, e := range events {
			out = append(out, eventObject(e))
		}
		return &tengo.Array{Value: out}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		attrs := make([]any, 0, len(args)-1)
		for i := 1; i+1 < len(args); i += 2 {
			attrs = append(attrs, objectAsString(args[i]), objectToAny(args[i+1]))
		}
		rt.log.Info(objectAsString(args[0]), attrs...)
		return tengo.UndefinedValue, nil
	}}

	values["print"] = &tengo.UserFunction{Name: "print", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		fmt.Fprintln(rt.out, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func eventObject(e session.Event) tengo.Object {
	values := map[string]tengo.Object{
		"kind": &tengo.String{Value: string(e.Kind)},
	}
	switch d := e.Data.(type) {
	case session.GridReady:
		values["width"] = &tengo.Int{Value: int64(d.Width)}
		values["height"] = &tengo.Int{Value: int64(d.Height)}
		values["cells"] = &tengo.Int{Value: int64(d.Cells)}
	case session.CellStateChanged:
		values["q"] = &tengo.Int{Value: int64(d.Coord.Q)}
		values["r"] = &tengo.Int{Value: int64(d.Coord.R)}
		values["enabled"] = boolObject(d.Enabled)
	case session.IntegrationComplete:
		values["enabled"] = &tengo.Int{Value: int64(d.Enabled)}
		values["disabled"] = &tengo.Int{Value: int64(d.Disabled)}
		values["toggled"] = &tengo.Int{Value: int64(d.Toggled)}
	}
	return &tengo.Map{Value: values}
}

func pointArgs(args []tengo.Object, at int) (cp.Vector, error) {
	if len(args) < at+2 {
		return cp.Vector{}, tengo.ErrWrongNumArguments
	}
	x, ok1 := toFloat(args[at])
	y, ok2 := toFloat(args[at+1])
	if !ok1 || !ok2 {
		return cp.Vector{}, tengo.ErrInvalidArgumentType{Name: "x/y", Expected: "number", Found: args[at].TypeName()}
	}
	return cp.Vector{X: x, Y: y}, nil
}

func vectorObject(v cp.Vector) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func errorObject(err error) tengo.Object {
	return &tengo.Error{Value: &tengo.String{Value: err.Error()}}
}

func toFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	}
	return 0, false
}

func toInt(obj tengo.Object) (int, bool) {
	switch v := obj.(type) {
	case *tengo.Int:
		return int(v.Value), true
	case *tengo.Float:
		return int(v.Value), true
	}
	return 0, false
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
