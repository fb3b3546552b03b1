// Package view keeps the per-element render state of a graph: resolved
// stencils, sized shapes, edge endpoints and highlight flags. It follows the
// graph and a selection through their event buses and can always be rebuilt
// from them.
package view

import (
	"slices"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
	"github.com/ritzau/dotedit/pkg/selection"
	"github.com/ritzau/dotedit/pkg/stencil"
)

// DefaultViewport is the visible area when none is configured.
var DefaultViewport = geometry.Size{Width: 800, Height: 600}

// EdgeHitDistance is how close to an edge a point must be to hit it.
const EdgeHitDistance = 4

// NodeState is the render state of one node.
type NodeState struct {
	Stencil   stencil.NodeStencil
	Shape     stencil.Shape
	Label     stencil.LabelStencil
	Position  geometry.Point
	Highlight bool
}

// BBox returns the rendered bounding box.
func (s *NodeState) BBox() geometry.Rect {
	return geometry.RectAround(s.Position, s.Shape.Size())
}

// EdgeState is the render state of one edge.
type EdgeState struct {
	Stencil   stencil.EdgeStencil
	Label     stencil.LabelStencil // nil when the edge has no label
	Start     geometry.Point
	End       geometry.Point
	Highlight bool
}

// View renders one graph.
type View struct {
	graph    *model.Graph
	stencils *stencil.Registry
	viewport geometry.Size

	nodes map[*model.Node]*NodeState
	edges map[*model.Edge]*EdgeState

	graphTokens []pubsub.Token
	sel         *selection.Manager
	selToken    pubsub.Token
}

// Option configures a View.
type Option func(*View)

// WithViewport sets the visible area.
func WithViewport(s geometry.Size) Option {
	return func(v *View) { v.viewport = s }
}

// New creates a view of g drawing with the stencils in reg.
func New(g *model.Graph, reg *stencil.Registry, opts ...Option) *View {
	v := &View{
		graph:    g,
		stencils: reg,
		viewport: DefaultViewport,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.graphTokens = []pubsub.Token{
		g.Subscribe(model.Created, func(_ any, e model.Event) { v.created(e.Element) }),
		g.Subscribe(model.Removed, func(_ any, e model.Event) { v.removed(e.Element) }),
		g.Subscribe(model.Changed, func(_ any, e model.Event) { v.changed(e.Element) }),
		g.Subscribe(model.Moved, func(_ any, e model.Event) { v.moved(e.Node()) }),
		g.Subscribe(model.NewGraph, func(_ any, _ model.Event) { v.RedrawAll() }),
	}
	v.RedrawAll()
	return v
}

// Attach makes the view highlight what sel selects.
func (v *View) Attach(sel *selection.Manager) {
	v.detachSelection()
	v.sel = sel
	v.selToken = sel.Subscribe(selection.Changed, func(_ any, e selection.Event) {
		v.SetHighlight(e.Element, e.Selected)
	})
	for _, el := range sel.Selection() {
		v.SetHighlight(el, true)
	}
}

func (v *View) detachSelection() {
	if v.sel != nil {
		v.sel.Unsubscribe(v.selToken)
		v.sel = nil
	}
}

// Close stops following the graph and selection.
func (v *View) Close() {
	for _, t := range v.graphTokens {
		v.graph.Unsubscribe(t)
	}
	v.graphTokens = nil
	v.detachSelection()
}

// Graph returns the graph being viewed.
func (v *View) Graph() *model.Graph { return v.graph }

// Stencils returns the stencil registry.
func (v *View) Stencils() *stencil.Registry { return v.stencils }

// Viewport returns the visible area.
func (v *View) Viewport() geometry.Size { return v.viewport }

// SetViewport changes the visible area.
func (v *View) SetViewport(s geometry.Size) { v.viewport = s }

// Node returns a copy of the render state of n.
func (v *View) Node(n *model.Node) (NodeState, bool) {
	s, ok := v.nodes[n]
	if !ok {
		return NodeState{}, false
	}
	return *s, true
}

// Edge returns a copy of the render state of e.
func (v *View) Edge(e *model.Edge) (EdgeState, bool) {
	s, ok := v.edges[e]
	if !ok {
		return EdgeState{}, false
	}
	return *s, true
}

// RedrawAll drops every cached state and rebuilds it from the graph.
func (v *View) RedrawAll() {
	v.nodes = make(map[*model.Node]*NodeState)
	v.edges = make(map[*model.Edge]*EdgeState)
	for _, n := range v.graph.Nodes() {
		v.drawNode(n)
	}
	for _, e := range v.graph.Edges() {
		v.drawEdge(e)
	}
	if v.sel != nil {
		for _, el := range v.sel.Selection() {
			v.SetHighlight(el, true)
		}
	}
}

func (v *View) drawNode(n *model.Node) *NodeState {
	st := v.stencils.ResolveNode(n.Stencil())
	if st == nil {
		logging.Warn("no node stencils registered", "node", n.Name())
		return nil
	}
	label := n.Label()
	state := &NodeState{
		Stencil:  st,
		Label:    v.stencils.ResolveLabel(label.Kind),
		Shape:    st.Shape(v.stencils.LabelSize(label)),
		Position: n.Position(),
	}
	if old, ok := v.nodes[n]; ok {
		state.Highlight = old.Highlight
	}
	v.nodes[n] = state
	return state
}

func (v *View) drawEdge(e *model.Edge) *EdgeState {
	st := v.stencils.ResolveEdge(e.Stencil())
	if st == nil {
		logging.Warn("no edge stencils registered", "edge", e.ID())
		return nil
	}
	state := &EdgeState{Stencil: st}
	if l := e.Label(); l != nil {
		state.Label = v.stencils.ResolveLabel(l.Kind)
	}
	if old, ok := v.edges[e]; ok {
		state.Highlight = old.Highlight
	}
	v.edges[e] = state
	v.updateEdge(e)
	return state
}

// updateEdge recomputes the endpoints of e from its nodes' current render
// positions, so it follows drag previews too.
func (v *View) updateEdge(e *model.Edge) {
	state, ok := v.edges[e]
	if !ok {
		return
	}
	src, sok := v.nodes[e.Src()]
	dst, dok := v.nodes[e.Dst()]
	if !sok || !dok {
		return
	}
	state.Start = boundary(src, dst.Position)
	state.End = boundary(dst, src.Position)
}

// boundary falls back to the centre when the line is degenerate.
func boundary(s *NodeState, towards geometry.Point) geometry.Point {
	if p, ok := s.Shape.BoundaryTo(s.Position, towards); ok {
		return p
	}
	return s.Position
}

func (v *View) created(el model.Element) {
	switch el := el.(type) {
	case *model.Node:
		v.drawNode(el)
		for _, e := range el.Edges() {
			v.drawEdge(e)
		}
	case *model.Edge:
		v.drawEdge(el)
	}
}

func (v *View) removed(el model.Element) {
	switch el := el.(type) {
	case *model.Node:
		delete(v.nodes, el)
		for _, e := range el.Edges() {
			delete(v.edges, e)
		}
	case *model.Edge:
		delete(v.edges, el)
	}
}

func (v *View) changed(el model.Element) {
	switch el := el.(type) {
	case *model.Node:
		v.drawNode(el)
		for _, e := range el.Edges() {
			v.updateEdge(e)
		}
	case *model.Edge:
		v.drawEdge(el)
	}
}

func (v *View) moved(n *model.Node) {
	state, ok := v.nodes[n]
	if !ok {
		return
	}
	state.Position = n.Position()
	for _, e := range n.Edges() {
		v.updateEdge(e)
	}
}

// SetHighlight marks el as highlighted or not. The flag survives redraws of
// the element.
func (v *View) SetHighlight(el model.Element, on bool) {
	switch el := el.(type) {
	case *model.Node:
		if s, ok := v.nodes[el]; ok {
			s.Highlight = on
		}
	case *model.Edge:
		if s, ok := v.edges[el]; ok {
			s.Highlight = on
		}
	}
}

// PreviewNode shows n at p without changing the graph. The next Moved or
// Changed event for n replaces the preview.
func (v *View) PreviewNode(n *model.Node, p geometry.Point) {
	if s, ok := v.nodes[n]; ok {
		s.Position = p
	}
}

// PreviewEdge recomputes e from the previewed node positions.
func (v *View) PreviewEdge(e *model.Edge) {
	v.updateEdge(e)
}

// BBox returns the rendered bounding box of a node, or the box spanned by an
// edge's endpoints. Unknown elements have an empty box at the origin.
func (v *View) BBox(el model.Element) geometry.Rect {
	switch el := el.(type) {
	case *model.Node:
		if s, ok := v.nodes[el]; ok {
			return s.BBox()
		}
	case *model.Edge:
		if s, ok := v.edges[el]; ok {
			return geometry.Bounds([]geometry.Point{s.Start, s.End})
		}
	}
	return geometry.Rect{}
}

// Extent returns the bounding box of the whole drawing.
func (v *View) Extent() (geometry.Rect, bool) {
	var box geometry.Rect
	found := false
	for _, n := range v.graph.Nodes() {
		s, ok := v.nodes[n]
		if !ok {
			continue
		}
		if !found {
			box, found = s.BBox(), true
			continue
		}
		box = box.Union(s.BBox())
	}
	return box, found
}

// HitTest returns the element under p: an edge within EdgeHitDistance of its
// segment, otherwise the topmost node containing p, otherwise nil.
func (v *View) HitTest(p geometry.Point) model.Element {
	edges := v.graph.Edges()
	for _, e := range slices.Backward(edges) {
		s, ok := v.edges[e]
		if !ok || s.Start == s.End {
			continue // loops collapse onto the node centre
		}
		if geometry.SegmentDistance(p, s.Start, s.End) <= EdgeHitDistance {
			return e
		}
	}
	nodes := v.graph.Nodes()
	for _, n := range slices.Backward(nodes) {
		if s, ok := v.nodes[n]; ok && s.Shape.Contains(s.Position, p) {
			return n
		}
	}
	return nil
}

var (
	_ selection.HitTester = (*View)(nil)
	_ selection.Previewer = (*View)(nil)
)
