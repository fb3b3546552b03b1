package layout

import (
	"math"

	"github.com/ritzau/dotedit/pkg/geometry"
)

// transform maps p to ((p+d)*r) per axis.
type transform struct {
	dx, dy float64
	rx, ry float64
}

func (t transform) apply(p geometry.Point) geometry.Point {
	return geometry.Pt((p.X+t.dx)*t.rx, (p.Y+t.dy)*t.ry)
}

// fitTransform computes how to bring a drawing into the viewport. The extent
// starts at the first centre and grows with every box. An axis that does not
// fit is scaled down after moving its minimum to zero; an axis that fits is
// only shifted, and only when something sticks out of the viewport.
func fitTransform(centres []geometry.Point, boxes []geometry.Rect, vp geometry.Size) transform {
	t := transform{rx: 1, ry: 1}
	if len(centres) == 0 {
		return t
	}

	xmin, xmax := centres[0].X, centres[0].X
	ymin, ymax := centres[0].Y, centres[0].Y
	for _, b := range boxes {
		xmin, xmax = math.Min(xmin, b.Left()), math.Max(xmax, b.Right())
		ymin, ymax = math.Min(ymin, b.Top()), math.Max(ymax, b.Bottom())
	}

	t.dx, t.rx = fitAxis(xmin, xmax, vp.Width)
	t.dy, t.ry = fitAxis(ymin, ymax, vp.Height)
	return t
}

func fitAxis(lo, hi, avail float64) (shift, scale float64) {
	scale = 1
	if extent := hi - lo; extent > 0 {
		scale = math.Min(1, avail/extent)
	}
	switch {
	case scale != 1:
		return -lo, scale
	case lo < 0:
		return -lo, scale
	case hi > avail:
		return avail - hi, scale
	}
	return 0, scale
}

// FitTool moves, and if needed shrinks, the whole drawing so it lies in the
// viewport.
type FitTool struct {
	ctx Context
}

func (t *FitTool) Init(ctx Context) bool {
	t.ctx = ctx
	return ctx.Graph != nil && ctx.View != nil
}

func (t *FitTool) DoLayout() {
	nodes := t.ctx.Graph.Nodes()
	centres := make([]geometry.Point, len(nodes))
	boxes := make([]geometry.Rect, len(nodes))
	for i, n := range nodes {
		centres[i] = n.Position()
		boxes[i] = t.ctx.View.BBox(n)
	}
	tr := fitTransform(centres, boxes, t.ctx.View.Viewport())
	for i, n := range nodes {
		n.SetPosition(tr.apply(centres[i]))
	}
}
