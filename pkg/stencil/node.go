package stencil

import (
	"math"

	svg "github.com/ajstarks/svgo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/dotedit/pkg/geometry"
)

// Shape is a node stencil sized for one label. Positions are passed in, so a
// Shape can be shared by the live view and a drag preview.
type Shape interface {
	// Size is the extent of the shape's bounding box.
	Size() geometry.Size
	// BoundaryTo is where the line from center towards target leaves the shape.
	BoundaryTo(center, target geometry.Point) (geometry.Point, bool)
	Contains(center, p geometry.Point) bool
	Draw(c *svg.SVG, center geometry.Point, attrs ...string)
}

// NodeStencil turns a label size into a Shape.
type NodeStencil interface {
	Name() string
	// Class is the CSS class of the node group.
	Class() string
	Shape(label geometry.Size) Shape
}

type nodeStencil struct {
	name  string
	class string
	shape func(label geometry.Size) Shape
}

func (s nodeStencil) Name() string  { return s.name }
func (s nodeStencil) Class() string { return s.class }

func (s nodeStencil) Shape(label geometry.Size) Shape {
	return s.shape(label)
}

// NewNodeStencil builds a stencil from a shape constructor.
func NewNodeStencil(name, class string, shape func(label geometry.Size) Shape) NodeStencil {
	return nodeStencil{name: name, class: class, shape: shape}
}

// Circle encloses the label in a circle 6 units wider than its longer side.
func Circle() NodeStencil {
	return NewNodeStencil("circle", "dotedit-circle", func(l geometry.Size) Shape {
		return circleShape{r: math.Max(l.Width, l.Height)/2 + 6}
	})
}

// Box pads the label by 10 units horizontally and 3 vertically.
func Box() NodeStencil {
	return NewNodeStencil("box", "dotedit-box", func(l geometry.Size) Shape {
		return boxShape{size: geometry.Size{Width: l.Width + 10, Height: l.Height + 3}}
	})
}

const hexTip = 15

// Hexagon puts pointed tips on the left and right of a padded label box.
func Hexagon() NodeStencil {
	return NewNodeStencil("hexagon", "dotedit-hexagon", func(l geometry.Size) Shape {
		w, h := l.Width/2+2, l.Height/2+2
		return newPolygonShape([]geometry.Point{
			{X: -w, Y: -h},
			{X: w, Y: -h},
			{X: w + hexTip, Y: 0},
			{X: w, Y: h},
			{X: -w, Y: h},
			{X: -w - hexTip, Y: 0},
		})
	})
}

// ConcaveHexagon cuts notches into the left and right of a padded label box.
func ConcaveHexagon() NodeStencil {
	return NewNodeStencil("concave hexagon", "dotedit-concave-hexagon", func(l geometry.Size) Shape {
		w, h := l.Width/2+8, l.Height/2+2
		return newPolygonShape([]geometry.Point{
			{X: -w - hexTip, Y: -h},
			{X: w + hexTip, Y: -h},
			{X: w, Y: 0},
			{X: w + hexTip, Y: h},
			{X: -w - hexTip, Y: h},
			{X: -w, Y: 0},
		})
	})
}

type circleShape struct{ r float64 }

func (s circleShape) Size() geometry.Size {
	return geometry.Size{Width: 2 * s.r, Height: 2 * s.r}
}

func (s circleShape) BoundaryTo(center, target geometry.Point) (geometry.Point, bool) {
	return geometry.CircleBoundary(center, s.r, target)
}

func (s circleShape) Contains(center, p geometry.Point) bool {
	return geometry.Distance(center, p) <= s.r
}

func (s circleShape) Draw(c *svg.SVG, center geometry.Point, attrs ...string) {
	c.Circle(px(center.X), px(center.Y), px(s.r), attrs...)
}

type boxShape struct{ size geometry.Size }

func (s boxShape) Size() geometry.Size { return s.size }

func (s boxShape) BoundaryTo(center, target geometry.Point) (geometry.Point, bool) {
	return geometry.BoxBoundary(geometry.RectAround(center, s.size), target)
}

func (s boxShape) Contains(center, p geometry.Point) bool {
	return geometry.RectAround(center, s.size).Contains(p)
}

func (s boxShape) Draw(c *svg.SVG, center geometry.Point, attrs ...string) {
	r := geometry.RectAround(center, s.size)
	c.Rect(px(r.X), px(r.Y), px(r.Width), px(r.Height), attrs...)
}

// polygonShape is an outline given relative to the node centre.
type polygonShape struct {
	outline []geometry.Point
	bounds  geometry.Rect
}

func newPolygonShape(outline []geometry.Point) polygonShape {
	return polygonShape{outline: outline, bounds: geometry.Bounds(outline)}
}

func (s polygonShape) Size() geometry.Size { return s.bounds.Size() }

func (s polygonShape) at(center geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(s.outline))
	for i, v := range s.outline {
		out[i] = r2.Add(center, v)
	}
	return out
}

func (s polygonShape) BoundaryTo(center, target geometry.Point) (geometry.Point, bool) {
	return geometry.PolygonBoundary(center, s.at(center), target)
}

func (s polygonShape) Contains(center, p geometry.Point) bool {
	return geometry.PolygonContains(s.at(center), p)
}

func (s polygonShape) Draw(c *svg.SVG, center geometry.Point, attrs ...string) {
	xs := make([]int, len(s.outline))
	ys := make([]int, len(s.outline))
	for i, v := range s.at(center) {
		xs[i], ys[i] = px(v.X), px(v.Y)
	}
	c.Polygon(xs, ys, attrs...)
}

// px rounds a drawing coordinate to the integer grid svgo writes.
func px(v float64) int {
	return int(math.Round(v))
}
