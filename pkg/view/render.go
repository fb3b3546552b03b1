package view

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/stencil"
)

// HighlightClass is added to the group of a highlighted element.
const HighlightClass = "dotedit-hl"

// margin keeps shapes on the border from being clipped.
const margin = 10

const stylesheet = `
svg { background: #fff; font-family: "Go", sans-serif; font-size: 12px; }
g.dotedit-node > circle, g.dotedit-node > rect, g.dotedit-node > polygon { fill: #eef3ff; stroke: #345; stroke-width: 1.5; }
g.dotedit-edge > path { fill: none; stroke: #345; stroke-width: 1.5; }
.dotedit-arrow { fill: #345; }
g.dotedit-hl > circle, g.dotedit-hl > rect, g.dotedit-hl > polygon { fill: #ffe9a8; stroke: #c60; }
g.dotedit-hl > path { stroke: #c60; }
text { fill: #123; pointer-events: none; }
`

// Render writes the current drawing as a standalone SVG document. The canvas
// covers the viewport and grows to include anything drawn outside it.
func (v *View) Render(w io.Writer) error {
	var buf bytes.Buffer
	canvas := svg.New(&buf)

	area := geometry.Rect{Width: v.viewport.Width, Height: v.viewport.Height}
	if extent, ok := v.Extent(); ok {
		area = area.Union(extent.Translate(geometry.Pt(-margin, -margin)).Union(extent.Translate(geometry.Pt(margin, margin))))
	}
	x, y := int(math.Floor(area.X)), int(math.Floor(area.Y))
	width, height := int(math.Ceil(area.Width)), int(math.Ceil(area.Height))
	canvas.Startview(width, height, x, y, width, height)

	canvas.Style("text/css", stylesheet)
	canvas.Def()
	stencil.WriteMarkers(canvas)
	canvas.DefEnd()

	for _, e := range v.graph.Edges() {
		s, ok := v.edges[e]
		if !ok {
			continue
		}
		canvas.Group(attr("id", fmt.Sprintf("edge-%d", e.ID())), classes("dotedit-edge", s.Stencil.Class(), s.Highlight))
		s.Stencil.Draw(canvas, s.Start, s.End)
		if s.Label != nil {
			s.Label.Draw(canvas, geometry.Midpoint(s.Start, s.End), e.Label())
		}
		canvas.Gend()
	}

	for _, n := range v.graph.Nodes() {
		s, ok := v.nodes[n]
		if !ok {
			continue
		}
		canvas.Group(attr("id", "node-"+n.Name()), classes("dotedit-node", s.Stencil.Class(), s.Highlight))
		s.Shape.Draw(canvas, s.Position)
		if s.Label != nil {
			s.Label.Draw(canvas, s.Position, n.Label())
		}
		canvas.Gend()
	}

	canvas.End()
	_, err := w.Write(buf.Bytes())
	return err
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func classes(base, class string, highlight bool) string {
	parts := []string{base, class}
	if highlight {
		parts = append(parts, HighlightClass)
	}
	return attr("class", strings.Join(parts, " "))
}
