package stencil

import (
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/ritzau/dotedit/pkg/geometry"
)

// Marker ids written by WriteMarkers.
const (
	ArrowEnd   = "Arrow"
	ArrowStart = "ArrowS"
)

// EdgeStencil draws the line between two boundary points.
type EdgeStencil interface {
	Name() string
	Class() string
	Draw(c *svg.SVG, from, to geometry.Point, attrs ...string)
}

type lineStencil struct {
	name        string
	class       string
	markerStart string
	markerEnd   string
}

func (s lineStencil) Name() string  { return s.name }
func (s lineStencil) Class() string { return s.class }

func (s lineStencil) Draw(c *svg.SVG, from, to geometry.Point, attrs ...string) {
	if s.markerStart != "" {
		attrs = append(attrs, fmt.Sprintf(`marker-start="url(#%s)"`, s.markerStart))
	}
	if s.markerEnd != "" {
		attrs = append(attrs, fmt.Sprintf(`marker-end="url(#%s)"`, s.markerEnd))
	}
	c.Path(fmt.Sprintf("M%d,%d L%d,%d", px(from.X), px(from.Y), px(to.X), px(to.Y)), attrs...)
}

// Line is an undecorated straight edge.
func Line() EdgeStencil {
	return lineStencil{name: "line", class: "dotedit-line-edge"}
}

// DirectedLine ends in an arrow at the destination.
func DirectedLine() EdgeStencil {
	return lineStencil{name: "directed line", class: "dotedit-dirline-edge", markerEnd: ArrowEnd}
}

// BidiLine has arrows at both ends.
func BidiLine() EdgeStencil {
	return lineStencil{name: "bidi line", class: "dotedit-bidiline-edge", markerStart: ArrowStart, markerEnd: ArrowEnd}
}

// WriteMarkers emits the arrow heads referenced by the line stencils. Call
// it inside a Def block.
func WriteMarkers(c *svg.SVG) {
	c.Marker(ArrowEnd, 10, 5, 10, 10, `orient="auto"`, `markerUnits="strokeWidth"`)
	c.Path("M0,0 L10,5 L0,10 z", `class="dotedit-arrow"`)
	c.MarkerEnd()
	c.Marker(ArrowStart, 0, 5, 10, 10, `orient="auto"`, `markerUnits="strokeWidth"`)
	c.Path("M10,0 L0,5 L10,10 z", `class="dotedit-arrow"`)
	c.MarkerEnd()
}
