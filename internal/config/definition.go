// Package config is the declarative on-disk configuration for an IOSTS: a
// YAML definition of states, transitions, and guard expressions, compiled
// into an *core.IOSTS, plus a fsnotify-backed watcher for hot reload. Each
// file is a Document: an ambient engine: block of Options alongside the
// systems: list of Definitions.
//
// It is grounded on the teacher engine's internal/production persister
// (gopkg.in/yaml.v3-based load/save of a declarative snapshot) and its
// internal/extensibility.ExpressionGuardEvaluator (a hand-rolled "key op
// value" string parser for guard conditions) — generalized here to a real
// expression language, github.com/expr-lang/expr, since a declarative
// guard needs more than three-token comparisons once it gates an IOSTS
// transition against multiple store variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/stateforge/iosts-refine/internal/core"
	"github.com/stateforge/iosts-refine/internal/primitives"
)

// Definition is the declarative, file-level description of a single
// IOSTS: its states, its initial state, and its transitions. It is the
// YAML counterpart of a core.Builder call chain.
type Definition struct {
	Name        string                 `yaml:"name"`
	Initial     string                 `yaml:"initial"`
	States      []string               `yaml:"states"`
	Transitions []TransitionDefinition `yaml:"transitions"`
}

// TransitionDefinition describes one transition. Variant is "reactive" or
// "proactive"; Direction is "model" or "system". Guard is an optional
// expr-lang expression string evaluated against the store's variable
// bindings (and, for a reactive transition, the incoming action's
// fields under the "action" identifier). GenerateFields gives a proactive
// transition the literal field values of the action it produces; when it
// is omitted the action has no fields (dynamic, store-driven generation is
// not expressible declaratively and needs a Go GenerateFunc instead).
type TransitionDefinition struct {
	From           string            `yaml:"from"`
	To             string            `yaml:"to"`
	Kind           string            `yaml:"kind"`
	Direction      string            `yaml:"direction"`
	Variant        string            `yaml:"variant"`
	Guard          string            `yaml:"guard,omitempty"`
	GenerateFields map[string]string `yaml:"generate,omitempty"`
}

// Options carries the ambient, engine-level settings every embedder-facing
// config struct in the corpus has alongside its domain definition, loaded
// from a top-level engine: key in the same YAML document as systems:.
type Options struct {
	AtomicRefinement bool   `yaml:"atomicRefinement"`
	LogLevel         string `yaml:"logLevel"`
	MetricsEnabled   bool   `yaml:"metricsEnabled"`
}

// DefaultOptions returns the Options a document gets when it omits the
// engine: key, or omits fields within it. AtomicRefinement defaults to
// true, the only value the scheduler recognizes (§6): yaml.v3 leaves
// fields absent from the document untouched rather than zeroing them, so
// this must be applied before Unmarshal, not after. MetricsEnabled
// defaults to true to match the engine's historical always-instrumented
// behavior; a document opts out explicitly rather than opting in.
func DefaultOptions() Options {
	return Options{AtomicRefinement: true, LogLevel: "info", MetricsEnabled: true}
}

// Document is the on-disk shape of a definition file: the ambient engine:
// block of Options alongside the systems: list of IOSTS Definitions.
type Document struct {
	Engine  Options      `yaml:"engine"`
	Systems []Definition `yaml:"systems"`
}

// LoadDocument reads and parses a Document from a YAML file. engine.
// atomicRefinement: false is rejected here rather than silently ignored —
// AtomicRefinement is the only scheduler-visible knob and false is not a
// supported value (§6).
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, primitives.NewError(primitives.BadArgument, "config.LoadDocument", fmt.Errorf("read %s: %w", path, err))
	}
	doc := &Document{Engine: DefaultOptions()}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, primitives.NewError(primitives.BadArgument, "config.LoadDocument", fmt.Errorf("parse %s: %w", path, err))
	}
	if !doc.Engine.AtomicRefinement {
		return nil, primitives.NewError(primitives.BadArgument, "config.LoadDocument", fmt.Errorf("engine.atomicRefinement=false is not supported; only true is recognized"))
	}
	return doc, nil
}

// Load reads a Document from path and returns its single system
// Definition — the convenience entry point for the common case of one
// IOSTS per file, used by Compile callers that don't need the rest of the
// document (cmd/refine-engine, Watcher).
func Load(path string) (*Definition, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if len(doc.Systems) != 1 {
		return nil, primitives.NewError(primitives.BadArgument, "config.Load", fmt.Errorf("expected exactly one system under systems:, got %d", len(doc.Systems)))
	}
	return &doc.Systems[0], nil
}

// SaveDocument serializes doc to path as YAML, grounded on the teacher's
// YAMLPersister.Save.
func SaveDocument(path string, doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return primitives.NewError(primitives.BadArgument, "config.SaveDocument", fmt.Errorf("marshal: %w", err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return primitives.NewError(primitives.BadArgument, "config.SaveDocument", fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

// Save serializes def to path as the single system of a Document carrying
// DefaultOptions, the convenience counterpart to Load.
func Save(path string, def *Definition) error {
	return SaveDocument(path, &Document{Engine: DefaultOptions(), Systems: []Definition{*def}})
}

// compiledGuard wraps an expr-lang program so it can be invoked as a
// core.GuardFunc or core.ProactiveGuardFunc.
type compiledGuard struct {
	program *vm.Program
}

func compileGuard(source string) (*compiledGuard, error) {
	program, err := expr.Compile(source, expr.AsBool())
	if err != nil {
		return nil, primitives.NewError(primitives.BadArgument, "config.compileGuard", fmt.Errorf("compile %q: %w", source, err))
	}
	return &compiledGuard{program: program}, nil
}

func (g *compiledGuard) evalReactive(store *primitives.Store, action primitives.Action) bool {
	env := storeEnv(store)
	if ma, ok := action.(primitives.ModelAction); ok {
		env["action"] = fieldEnv(ma.Fields())
	}
	out, err := expr.Run(g.program, env)
	if err != nil {
		return false
	}
	b, _ := out.(bool)
	return b
}

func (g *compiledGuard) evalProactive(store *primitives.Store) bool {
	out, err := expr.Run(g.program, storeEnv(store))
	if err != nil {
		return false
	}
	b, _ := out.(bool)
	return b
}

func storeEnv(store *primitives.Store) map[string]any {
	return fieldEnv(store.Snapshot())
}

func fieldEnv(fields map[string]primitives.Value) map[string]any {
	env := make(map[string]any, len(fields))
	for name, v := range fields {
		switch v.Kind() {
		case primitives.KindBool:
			b, _ := v.Bool()
			env[name] = b
		case primitives.KindInt:
			i, _ := v.Int()
			env[name] = i
		case primitives.KindString:
			s, _ := v.String()
			env[name] = s
		}
	}
	return env
}

// Compile builds a *core.IOSTS from def. Reactive transitions with no
// Guard are unconditional; proactive transitions generate an action with
// the literal fields in GenerateFields (types are inferred: "true"/"false"
// parse as bool, otherwise an integer parse is tried, otherwise the raw
// string is used). Update functions are never declarative — a definition
// that needs store mutation on firing must be built with core.Builder
// directly and is out of scope for this loader.
func Compile(def *Definition) (*core.IOSTS, error) {
	b := core.NewBuilder(def.Name, def.Initial)
	for _, t := range def.Transitions {
		dir, err := parseDirection(t.Direction)
		if err != nil {
			return nil, err
		}
		switch t.Variant {
		case "reactive", "":
			guard, err := reactiveGuard(t.Guard)
			if err != nil {
				return nil, err
			}
			b.Reactive(t.From, t.To, primitives.ActionKind(t.Kind), dir, guard, nil)
		case "proactive":
			guard, err := proactiveGuard(t.Guard)
			if err != nil {
				return nil, err
			}
			fields := literalFields(t.GenerateFields)
			kind := primitives.ActionKind(t.Kind)
			generate := generatorFor(dir, kind, t.Kind, fields)
			b.Proactive(t.From, t.To, kind, dir, guard, generate, nil)
		default:
			return nil, primitives.NewError(primitives.BadArgument, "config.Compile", fmt.Errorf("unknown transition variant %q", t.Variant))
		}
	}
	return b.Build()
}

func parseDirection(s string) (primitives.Direction, error) {
	switch s {
	case "model", "":
		return primitives.Model, nil
	case "system":
		return primitives.System, nil
	default:
		return 0, primitives.NewError(primitives.BadArgument, "config.parseDirection", fmt.Errorf("unknown direction %q", s))
	}
}

func reactiveGuard(source string) (core.GuardFunc, error) {
	if source == "" {
		return nil, nil
	}
	g, err := compileGuard(source)
	if err != nil {
		return nil, err
	}
	return g.evalReactive, nil
}

func proactiveGuard(source string) (core.ProactiveGuardFunc, error) {
	if source == "" {
		return nil, nil
	}
	g, err := compileGuard(source)
	if err != nil {
		return nil, err
	}
	return g.evalProactive, nil
}

// generatorFor builds the GenerateFunc for a proactive transition's literal
// payload, producing a ModelAction or a SystemAction depending on dir so
// the scheduler's dispatchGenerated routes it correctly by Direction():
// a "system" transition declared in YAML must still produce a
// SystemAction, not a ModelAction with Direction()==Model, or it would be
// silently dropped by the ModelOutputs filter instead of reaching
// SendSystemCommand.
func generatorFor(dir primitives.Direction, kind primitives.ActionKind, typeName string, fields map[string]primitives.Value) core.GenerateFunc {
	if dir == primitives.System {
		return func(*primitives.Store) primitives.Action {
			return primitives.NewSystemAction(kind, fields)
		}
	}
	return func(*primitives.Store) primitives.Action {
		return primitives.NewModelAction(kind, typeName, fields)
	}
}

func literalFields(raw map[string]string) map[string]primitives.Value {
	out := make(map[string]primitives.Value, len(raw))
	for k, v := range raw {
		out[k] = parseLiteral(v)
	}
	return out
}

func parseLiteral(s string) primitives.Value {
	switch s {
	case "true":
		return primitives.BoolValue(true)
	case "false":
		return primitives.BoolValue(false)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return primitives.IntValue(i)
	}
	return primitives.StringValue(s)
}
