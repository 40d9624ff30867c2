package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/iosts-refine/internal/primitives"
)

func TestModelActionFieldsAreCopied(t *testing.T) {
	a := primitives.NewModelAction("InputA", "InputA", map[string]primitives.Value{
		"x": primitives.IntValue(1),
	})
	fields := a.Fields()
	fields["x"] = primitives.IntValue(99)

	again := a.Fields()
	i, _ := again["x"].Int()
	assert.EqualValues(t, 1, i)
	assert.Equal(t, primitives.Model, a.Direction())
}

func TestSystemActionOpaquePayload(t *testing.T) {
	a := primitives.NewSystemAction("SysCmdC", struct{ Foo string }{Foo: "bar"})
	assert.Equal(t, primitives.ActionKind("SysCmdC"), a.ActionKind())
	assert.Equal(t, primitives.System, a.Direction())
	payload, ok := a.Payload().(struct{ Foo string })
	require.True(t, ok)
	assert.Equal(t, "bar", payload.Foo)
}
