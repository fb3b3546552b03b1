// Package geometry holds the small amount of plane geometry the editor needs:
// bounding boxes and the intersection of a centre-to-centre line with a shape
// outline, used to draw edges flush to node boundaries.
//
// All functions are pure. Degenerate input (a target on the centre, a
// zero-length direction) never divides by zero; it is reported through the
// boolean result instead.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// eps absorbs rounding when a candidate point sits exactly on a corner.
const eps = 1e-9

// Point is a position or displacement in drawing coordinates.
type Point = r2.Vec

// Pt builds a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned box whose top-left corner is (X, Y).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectAround returns the box of the given size centred on c.
func RectAround(c Point, s Size) Rect {
	return Rect{X: c.X - s.Width/2, Y: c.Y - s.Height/2, Width: s.Width, Height: s.Height}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the middle of the box.
func (r Rect) Center() Point {
	return Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

// Size returns the extent of the box.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside or on the border of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left()-eps && p.X <= r.Right()+eps &&
		p.Y >= r.Top()-eps && p.Y <= r.Bottom()+eps
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Union returns the smallest box containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left(), o.Left())
	top := math.Min(r.Top(), o.Top())
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Box converts r to a gonum box.
func (r Rect) Box() r2.Box {
	return r2.Box{Min: Pt(r.Left(), r.Top()), Max: Pt(r.Right(), r.Bottom())}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return r2.Scale(0.5, r2.Add(a, b))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return Distance(p, a)
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, r2.Add(a, r2.Scale(t, ab)))
}

// BoxBoundary returns the point where the line from the centre of box towards
// target crosses the border of box.
//
// The vertical sides are tried before the horizontal ones; a candidate is
// accepted only if it lies within the box span on the other axis. Purely
// horizontal or vertical lines are answered without a slope. The result is
// false when target coincides with the centre.
func BoxBoundary(box Rect, target Point) (Point, bool) {
	c := box.Center()
	d := r2.Sub(target, c)
	hw, hh := box.Width/2, box.Height/2

	switch {
	case d.X == 0 && d.Y == 0:
		return c, false
	case d.Y == 0:
		if d.X < 0 {
			return Pt(box.Left(), c.Y), true
		}
		return Pt(box.Right(), c.Y), true
	case d.X == 0:
		if d.Y < 0 {
			return Pt(c.X, box.Top()), true
		}
		return Pt(c.X, box.Bottom()), true
	}

	// left/right
	side := hw
	if d.X < 0 {
		side = -hw
	}
	if y := d.Y / d.X * side; math.Abs(y) <= hh+eps {
		return Pt(c.X+side, c.Y+y), true
	}

	// top/bottom
	side = hh
	if d.Y < 0 {
		side = -hh
	}
	if x := d.X / d.Y * side; math.Abs(x) <= hw+eps {
		return Pt(c.X+x, c.Y+side), true
	}

	return c, false
}

// CircleBoundary returns the point where the line from center towards target
// crosses the circle of radius r.
func CircleBoundary(center Point, r float64, target Point) (Point, bool) {
	d := r2.Sub(target, center)
	n := r2.Norm(d)
	if n == 0 {
		return center, false
	}
	return r2.Add(center, r2.Scale(r/n, d)), true
}

// PolygonBoundary returns the nearest point where the ray from center towards
// target crosses the closed outline given by vertices. The outline must be
// star-shaped with respect to center, which holds for every node shape.
func PolygonBoundary(center Point, vertices []Point, target Point) (Point, bool) {
	d := r2.Sub(target, center)
	if (d.X == 0 && d.Y == 0) || len(vertices) < 3 {
		return center, false
	}

	best := math.Inf(1)
	for i := range vertices {
		a := vertices[i]
		e := r2.Sub(vertices[(i+1)%len(vertices)], a)
		denom := r2.Cross(d, e)
		if math.Abs(denom) < eps {
			continue // parallel side
		}
		ac := r2.Sub(a, center)
		t := r2.Cross(ac, e) / denom
		u := r2.Cross(ac, d) / denom
		if t >= 0 && u >= -eps && u <= 1+eps && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return center, false
	}
	return r2.Add(center, r2.Scale(best, d)), true
}

// PolygonContains reports whether p is inside the closed outline, using the
// even-odd rule.
func PolygonContains(vertices []Point, p Point) bool {
	inside := false
	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		a, b := vertices[i], vertices[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the bounding box of a set of points.
func Bounds(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
