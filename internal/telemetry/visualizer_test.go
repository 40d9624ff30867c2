package telemetry_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/iosts-refine/internal/core"
	"github.com/stateforge/iosts-refine/internal/primitives"
	"github.com/stateforge/iosts-refine/internal/telemetry"
)

func TestExportDOTIncludesStatesAndTransitions(t *testing.T) {
	m, err := core.NewBuilder("happy", "S0").
		Reactive("S0", "S1", "InputA", primitives.Model, nil, nil).
		Proactive("S1", "S0", "OutputB", primitives.Model, nil, func(s *primitives.Store) primitives.Action {
			return primitives.NewModelAction("OutputB", "OutputB", nil)
		}, nil).
		Build()
	require.NoError(t, err)

	dot := telemetry.ExportDOT(m)
	assert.True(t, strings.HasPrefix(dot, "digraph happy {"))
	assert.Contains(t, dot, `"S0"`)
	assert.Contains(t, dot, `"S1"`)
	assert.Contains(t, dot, "reactive(InputA)")
	assert.Contains(t, dot, "proactive(OutputB)")
}
