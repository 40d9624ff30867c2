package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/iosts-refine/internal/primitives"
)

func registryWithInputA() *primitives.ActionRegistry {
	reg := primitives.NewActionRegistry()
	_ = reg.Register("InputA", func(fields map[string]primitives.Value) (primitives.ModelAction, error) {
		return primitives.NewModelAction("InputA", "InputA", fields), nil
	})
	return reg
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	reg := registryWithInputA()
	original := primitives.NewModelAction("InputA", "InputA", map[string]primitives.Value{
		"x":    primitives.IntValue(1),
		"name": primitives.StringValue("true"), // adversarial: string that looks like a bool
		"ok":   primitives.BoolValue(true),
	})

	wire := primitives.Serialize(original)
	recovered, err := primitives.Deserialize(wire, reg)
	require.NoError(t, err)

	for k, v := range original.Fields() {
		rv, ok := recovered.Fields()[k]
		require.True(t, ok, "field %q missing after round trip", k)
		assert.True(t, v.Equal(rv), "field %q: %#v != %#v", k, v, rv)
	}
	assert.Equal(t, original.TypeName(), recovered.TypeName())
}

func TestDeserializeUnregisteredType(t *testing.T) {
	reg := primitives.NewActionRegistry()
	_, err := primitives.Deserialize("Unknown\tx=1", reg)
	assert.Error(t, err)
}

func TestDeserializeEmptyTypeName(t *testing.T) {
	reg := registryWithInputA()
	_, err := primitives.Deserialize("", reg)
	assert.ErrorIs(t, err, primitives.NewError(primitives.BadArgument, "", nil))
}
