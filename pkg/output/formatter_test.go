package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/dotedit/pkg/topology"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name   string
		report topology.Report
		want   []string
		absent []string
	}{
		{
			name:   "clean",
			report: topology.Report{Nodes: 2, Edges: 1, Components: [][]string{{"a", "b"}}},
			want:   []string{"Diagram Report - demo", "Nodes: 2", "Edges: 1", "Components: 1", "✓ No cycles"},
			absent: []string{"CYCLES:", "UNKNOWN STENCILS:"},
		},
		{
			name: "problems",
			report: topology.Report{
				Nodes:      3,
				Components: [][]string{{"a", "b"}, {"c"}},
				Cycles:     [][]string{{"a", "b"}},
				SelfLoops:  []string{"c"},
				Unresolved: []topology.Unresolved{{Element: `node "c"`, Stencil: "octagon"}},
			},
			want: []string{
				"Components: 2",
				"  c\n",
				"CYCLES:",
				"a -> b -> a",
				"c -> c (self loop)",
				"UNKNOWN STENCILS:",
				`Stencil: "octagon"`,
			},
			absent: []string{"✓"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintReport(&buf, "demo", &tt.report)
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(out, s) {
					t.Errorf("output unexpectedly contains %q", s)
				}
			}
		})
	}
}
