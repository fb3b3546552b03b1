package model

import (
	"fmt"
	"strconv"

	"github.com/ritzau/dotedit/pkg/geometry"
)

// LabelKind selects how a label is drawn
type LabelKind string

// LabelPlain is drawn as a single line of text.
const LabelPlain LabelKind = "plain"

// Label is a tagged value: Kind picks the label stencil, Value is its content.
type Label struct {
	Kind  LabelKind `json:"type"`
	Value string    `json:"value"`
}

// PlainLabel returns a plain text label.
func PlainLabel(s string) *Label {
	return &Label{Kind: LabelPlain, Value: s}
}

func (l *Label) clone() *Label {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// Element is the part of a node or edge that editing tools may touch. It
// deliberately has no structural operations; those live on Graph.
type Element interface {
	fmt.Stringer

	// Graph returns the owning graph, or nil once the element is removed.
	Graph() *Graph

	Label() *Label
	SetLabel(l *Label)

	Stencil() string
	SetStencil(name string)

	Data(key string) (any, bool)
	SetData(key string, value any)
	DataKeys() []string

	isElement()
}

// attrs holds what nodes and edges have in common.
type attrs struct {
	graph   *Graph
	label   *Label
	stencil string
	data    *orderedMap[string, any]
}

func newAttrs(g *Graph, stencil string) attrs {
	return attrs{graph: g, stencil: stencil, data: newOrderedMap[string, any]()}
}

func (a *attrs) Graph() *Graph      { return a.graph }
func (a *attrs) Label() *Label      { return a.label.clone() }
func (a *attrs) Stencil() string    { return a.stencil }
func (a *attrs) DataKeys() []string { return a.data.orderedKeys() }

func (a *attrs) Data(key string) (any, bool) {
	return a.data.get(key)
}

// Node is a vertex of a Graph, identified by its name.
type Node struct {
	attrs
	name     string
	position geometry.Point
	edges    *orderedMap[int, *Edge]
}

func (*Node) isElement() {}

// Name returns the node's unique name within its graph.
func (n *Node) Name() string { return n.name }

func (n *Node) String() string { return "node " + strconv.Quote(n.name) }

// Position returns the centre of the node in drawing coordinates.
func (n *Node) Position() geometry.Point { return n.position }

// Edges returns the incident edges ordered by id.
func (n *Node) Edges() []*Edge { return n.edges.orderedValues() }

// Degree returns the number of incident edges.
func (n *Node) Degree() int { return n.edges.len() }

// SetLabel replaces the label; nil resets it to the plain node name.
func (n *Node) SetLabel(l *Label) {
	if l == nil {
		l = PlainLabel(n.name)
	}
	n.label = l.clone()
	n.emit(Changed, n)
}

// SetStencil stores the stencil name as given. Names are resolved when the
// node is drawn, so an unknown name is kept and rendered with a fallback.
func (n *Node) SetStencil(name string) {
	n.stencil = name
	n.emit(Changed, n)
}

// SetData attaches a value under key; a nil value removes the key.
func (n *Node) SetData(key string, value any) {
	n.setData(key, value)
	n.emit(Changed, n)
}

// SetPosition moves the node's centre to p.
func (n *Node) SetPosition(p geometry.Point) {
	n.position = p
	n.emit(Moved, n)
}

// Edge connects two nodes of the same Graph.
type Edge struct {
	attrs
	id  int
	src *Node
	dst *Node
}

func (*Edge) isElement() {}

// ID returns the edge's unique id within its graph.
func (e *Edge) ID() int { return e.id }

func (e *Edge) String() string { return "edge " + strconv.Itoa(e.id) }

// Src returns the source endpoint.
func (e *Edge) Src() *Node { return e.src }

// Dst returns the destination endpoint.
func (e *Edge) Dst() *Node { return e.dst }

// Other returns the endpoint opposite n.
func (e *Edge) Other(n *Node) *Node {
	if e.src == n {
		return e.dst
	}
	return e.src
}

// IsLoop reports whether both endpoints are the same node.
func (e *Edge) IsLoop() bool { return e.src == e.dst }

// SetLabel replaces the label; nil removes it.
func (e *Edge) SetLabel(l *Label) {
	e.label = l.clone()
	e.emit(Changed, e)
}

// SetStencil stores the stencil name as given, see Node.SetStencil.
func (e *Edge) SetStencil(name string) {
	e.stencil = name
	e.emit(Changed, e)
}

// SetData attaches a value under key; a nil value removes the key.
func (e *Edge) SetData(key string, value any) {
	e.setData(key, value)
	e.emit(Changed, e)
}

func (a *attrs) setData(key string, value any) {
	if value == nil {
		a.data.delete(key)
		return
	}
	a.data.set(key, value)
}

func (a *attrs) emit(kind EventKind, el Element) {
	if a.graph != nil {
		a.graph.Emit(kind, el)
	}
}
