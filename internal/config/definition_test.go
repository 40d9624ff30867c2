package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/iosts-refine/internal/config"
	"github.com/stateforge/iosts-refine/internal/primitives"
)

func writeDefinition(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "def.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	return path
}

const happyYAML = `
engine:
  logLevel: debug
systems:
  - name: happy
    initial: S0
    states: [S0, S1]
    transitions:
      - from: S0
        to: S1
        kind: InputA
        direction: model
        variant: reactive
        guard: "allow == true"
      - from: S1
        to: S0
        kind: OutputB
        direction: model
        variant: proactive
        generate:
          n: "3"
`

const atomicRefinementFalseYAML = `
engine:
  atomicRefinement: false
systems:
  - name: rejected
    initial: S0
    states: [S0]
`

func TestLoadAndCompileBuildsWorkingIOSTS(t *testing.T) {
	path := writeDefinition(t, happyYAML)
	def, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "happy", def.Name)

	m, err := config.Compile(def)
	require.NoError(t, err)
	assert.Equal(t, "S0", m.CurrentState().Name)

	in := primitives.NewModelAction("InputA", "InputA", nil)
	assert.Empty(t, m.EnabledReactive(in), "guard should gate until allow=true")

	require.NoError(t, m.Store().Set("allow", primitives.BoolValue(true)))
	enabled := m.EnabledReactive(in)
	require.Len(t, enabled, 1)
	require.NoError(t, m.FireReactive(in, enabled[0]))
	assert.Equal(t, "S1", m.CurrentState().Name)

	proactive := m.EnabledProactive()
	require.Len(t, proactive, 1)
	out, err := m.FireProactive(proactive[0])
	require.NoError(t, err)
	ma, ok := out.(primitives.ModelAction)
	require.True(t, ok)
	n, ok := ma.Fields()["n"].Int()
	require.True(t, ok)
	assert.Equal(t, int64(3), n)
}

func TestCompileProactiveSystemTransitionGeneratesSystemAction(t *testing.T) {
	def := &config.Definition{
		Name:    "sut-driver",
		Initial: "S0",
		States:  []string{"S0", "S1"},
		Transitions: []config.TransitionDefinition{
			{
				From: "S0", To: "S1",
				Kind: "StartMotor", Direction: "system", Variant: "proactive",
				GenerateFields: map[string]string{"speed": "5"},
			},
			// A model transition keeps the single-model-action-type
			// construction invariant satisfied.
			{
				From: "S1", To: "S0",
				Kind: "Ack", Direction: "model", Variant: "reactive",
			},
		},
	}
	m, err := config.Compile(def)
	require.NoError(t, err)

	proactive := m.EnabledProactive()
	require.Len(t, proactive, 1)
	out, err := m.FireProactive(proactive[0])
	require.NoError(t, err)

	sa, ok := out.(primitives.SystemAction)
	require.True(t, ok, "a system-direction transition must generate a SystemAction, not a ModelAction")
	assert.Equal(t, primitives.System, sa.Direction())
	assert.Equal(t, primitives.ActionKind("StartMotor"), sa.ActionKind())
}

func TestCompileRejectsUnknownVariant(t *testing.T) {
	def := &config.Definition{
		Name:    "bad",
		Initial: "S0",
		States:  []string{"S0", "S1"},
		Transitions: []config.TransitionDefinition{
			{From: "S0", To: "S1", Kind: "X", Direction: "model", Variant: "sideways"},
		},
	}
	_, err := config.Compile(def)
	assert.Error(t, err)
}

func TestLoadRejectsAtomicRefinementFalse(t *testing.T) {
	path := writeDefinition(t, atomicRefinementFalseYAML)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadDefaultsEngineOptionsWhenOmitted(t *testing.T) {
	path := writeDefinition(t, happyYAML)
	doc, err := config.LoadDocument(path)
	require.NoError(t, err)
	assert.True(t, doc.Engine.AtomicRefinement, "AtomicRefinement must default to true when the document omits it")
	assert.Equal(t, "debug", doc.Engine.LogLevel)
	require.Len(t, doc.Systems, 1)
	assert.Equal(t, "happy", doc.Systems[0].Name)
}

func TestSaveRoundTrips(t *testing.T) {
	path := writeDefinition(t, happyYAML)
	def, err := config.Load(path)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, config.Save(out, def))

	reloaded, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, def.Name, reloaded.Name)
	assert.Equal(t, def.Transitions[0].Guard, reloaded.Transitions[0].Guard)
}
