package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/dotedit/pkg/topology"
)

// PrintReport prints a topology report with colors
func PrintReport(w io.Writer, title string, r *topology.Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	heading := "Diagram Report"
	if title != "" {
		heading += " - " + title
	}
	bold.Fprintln(w, heading)
	bold.Fprintln(w, strings.Repeat("=", len(heading)))
	fmt.Fprintf(w, "Nodes: %d\n", r.Nodes)
	fmt.Fprintf(w, "Edges: %d\n", r.Edges)

	if len(r.Components) <= 1 {
		green.Fprintf(w, "Components: %d\n", len(r.Components))
	} else {
		yellow.Fprintf(w, "Components: %d\n", len(r.Components))
		for _, c := range r.Components {
			cyan.Fprintf(w, "  %s\n", strings.Join(c, ", "))
		}
	}
	fmt.Fprintln(w)

	if len(r.Cycles) > 0 || len(r.SelfLoops) > 0 {
		red.Fprintln(w, "CYCLES:")
		for _, c := range r.Cycles {
			yellow.Fprintf(w, "  %s -> %s\n", strings.Join(c, " -> "), c[0])
		}
		for _, n := range r.SelfLoops {
			yellow.Fprintf(w, "  %s -> %s (self loop)\n", n, n)
		}
		fmt.Fprintln(w)
	}

	if len(r.Unresolved) > 0 {
		red.Fprintln(w, "UNKNOWN STENCILS:")
		for _, u := range r.Unresolved {
			yellow.Fprintf(w, "  %s\n", u.Element)
			cyan.Fprintf(w, "    Stencil: %q\n", u.Stencil)
			fmt.Fprintf(w, "    Drawn with the fallback stencil\n")
		}
		fmt.Fprintln(w)
	}

	if r.Acyclic() && len(r.Unresolved) == 0 {
		green.Fprintln(w, "✓ No cycles and every stencil resolves")
	}
}
