package telemetry

import (
	"bytes"
	"fmt"

	"github.com/stateforge/iosts-refine/internal/core"
)

// ExportDOT renders m as Graphviz DOT source, highlighting the current
// state. Flattened from the teacher's hierarchical DefaultVisualizer —
// there is no compound/parallel nesting to recurse into here, just states
// and the transitions between them.
func ExportDOT(m *core.IOSTS) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", m.Name())
	buf.WriteString("  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n  edge [fontsize=9];\n")

	current := m.CurrentState()
	seen := make(map[string]bool)
	for _, t := range m.Transitions() {
		for _, s := range []string{t.From.Name, t.To.Name} {
			if seen[s] {
				continue
			}
			seen[s] = true
			if current != nil && s == current.Name {
				fmt.Fprintf(&buf, "  %q [style=\"rounded,filled\", fillcolor=lightgray];\n", s)
			} else {
				fmt.Fprintf(&buf, "  %q;\n", s)
			}
		}
	}
	for _, t := range m.Transitions() {
		variant := "reactive"
		if t.Variant == core.Proactive {
			variant = "proactive"
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", t.From.Name, t.To.Name, fmt.Sprintf("%s(%s)", variant, t.Kind))
	}
	buf.WriteString("}\n")
	return buf.String()
}
