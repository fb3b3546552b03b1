package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ritzau/dotedit/pkg/pubsub"
)

// Default stencil names for a fresh graph.
const (
	DefaultNodeStencil = "circle"
	DefaultEdgeStencil = "line"
)

var (
	// ErrDuplicateName is returned when a node name is already taken.
	ErrDuplicateName = errors.New("duplicate node name")
	// ErrForeignNode is returned when an edge endpoint is not in the graph.
	ErrForeignNode = errors.New("node does not belong to this graph")
	// ErrUnknownStencil is returned when a default stencil is not in the catalog.
	ErrUnknownStencil = errors.New("unknown stencil")
)

// StencilCatalog answers whether stencil names can be drawn.
type StencilCatalog interface {
	HasNodeStencil(name string) bool
	HasEdgeStencil(name string) bool
}

// Graph owns the nodes and edges of one diagram and publishes every mutation
// on its Bus with itself as the source.
//
// A Graph is not safe for concurrent use. Handlers run synchronously inside
// the mutating call and may mutate the graph again.
type Graph struct {
	bus     *Bus
	catalog StencilCatalog

	nodes       *orderedMap[string, *Node]
	edges       *orderedMap[int, *Edge]
	nodeSeq     int
	edgeSeq     int
	nodeStencil string
	edgeStencil string

	muted int
}

// Option configures a Graph.
type Option func(*Graph)

// WithBus makes the graph publish on an existing bus.
func WithBus(b *Bus) Option {
	return func(g *Graph) { g.bus = b }
}

// WithCatalog validates default stencil names against c.
func WithCatalog(c StencilCatalog) Option {
	return func(g *Graph) { g.catalog = c }
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	if g.bus == nil {
		g.bus = NewBus()
	}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.nodes = newOrderedMap[string, *Node]()
	g.edges = newOrderedMap[int, *Edge]()
	g.nodeSeq = 0
	g.edgeSeq = 0
	g.nodeStencil = DefaultNodeStencil
	g.edgeStencil = DefaultEdgeStencil
}

// Bus returns the bus the graph publishes on.
func (g *Graph) Bus() *Bus { return g.bus }

// Subscribe registers h for events of kind from this graph.
func (g *Graph) Subscribe(kind EventKind, h pubsub.Handler[Event]) pubsub.Token {
	return g.bus.Subscribe(g, kind, h)
}

// SubscribeAll registers h for every event from this graph.
func (g *Graph) SubscribeAll(h pubsub.Handler[Event]) pubsub.Token {
	return g.bus.SubscribeAll(g, h)
}

// Unsubscribe removes a registration made with Subscribe or SubscribeAll.
func (g *Graph) Unsubscribe(t pubsub.Token) { g.bus.Unsubscribe(t) }

// Emit publishes an event unless the graph is inside Silently. Batch
// operations use it to announce their result once.
func (g *Graph) Emit(kind EventKind, el Element) {
	if g.muted > 0 {
		return
	}
	g.bus.Publish(g, kind, Event{Kind: kind, Element: el})
}

// Silently runs fn with event emission suppressed. Callers are expected to
// Emit a summary event afterwards.
func (g *Graph) Silently(fn func()) {
	g.muted++
	defer func() { g.muted-- }()
	fn()
}

// Node returns the node with the given name, or nil.
func (g *Graph) Node(name string) *Node {
	n, _ := g.nodes.get(name)
	return n
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id int) *Edge {
	e, _ := g.edges.get(id)
	return e
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node { return g.nodes.orderedValues() }

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge { return g.edges.orderedValues() }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.nodes.len() }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges.len() }

// Contains reports whether el is currently owned by g.
func (g *Graph) Contains(el Element) bool {
	switch v := el.(type) {
	case *Node:
		return v != nil && g.Node(v.name) == v
	case *Edge:
		return v != nil && g.Edge(v.id) == v
	}
	return false
}

// DefaultStencils returns the stencil names given to new nodes and edges.
func (g *Graph) DefaultStencils() (node, edge string) {
	return g.nodeStencil, g.edgeStencil
}

// SetDefaultStencils changes the stencils given to new elements. An empty
// name leaves that default unchanged. When the graph has a catalog, unknown
// names are rejected and the other default is still applied.
func (g *Graph) SetDefaultStencils(node, edge string) error {
	var errs []error
	if node != "" {
		if g.catalog != nil && !g.catalog.HasNodeStencil(node) {
			errs = append(errs, fmt.Errorf("node stencil %q: %w", node, ErrUnknownStencil))
		} else {
			g.nodeStencil = node
		}
	}
	if edge != "" {
		if g.catalog != nil && !g.catalog.HasEdgeStencil(edge) {
			errs = append(errs, fmt.Errorf("edge stencil %q: %w", edge, ErrUnknownStencil))
		} else {
			g.edgeStencil = edge
		}
	}
	return errors.Join(errs...)
}

// NextName returns the name CreateNode would generate.
func (g *Graph) NextName() string {
	seq := g.nodeSeq
	for {
		seq++
		name := strconv.Itoa(seq)
		if !g.nodes.has(name) {
			return name
		}
	}
}

// CreateNode adds a node. An empty name is replaced by the next free
// generated name. A taken name fails with ErrDuplicateName and leaves the
// graph unchanged.
func (g *Graph) CreateNode(name string) (*Node, error) {
	if name == "" {
		for {
			g.nodeSeq++
			name = strconv.Itoa(g.nodeSeq)
			if !g.nodes.has(name) {
				break
			}
		}
	} else if g.nodes.has(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}

	n := &Node{
		attrs: newAttrs(g, g.nodeStencil),
		name:  name,
		edges: newOrderedMap[int, *Edge](),
	}
	n.label = PlainLabel(name)
	g.nodes.set(name, n)

	g.Emit(Created, n)
	return n, nil
}

// CreateEdge connects src to dst. Both must belong to g; self loops are
// allowed.
func (g *Graph) CreateEdge(src, dst *Node) (*Edge, error) {
	if !g.Contains(src) || !g.Contains(dst) {
		return nil, ErrForeignNode
	}

	g.edgeSeq++
	e := &Edge{
		attrs: newAttrs(g, g.edgeStencil),
		id:    g.edgeSeq,
		src:   src,
		dst:   dst,
	}
	g.edges.set(e.id, e)
	src.edges.set(e.id, e)
	dst.edges.set(e.id, e)

	g.Emit(Created, e)
	return e, nil
}

// RemoveEdge detaches e from both endpoints and the graph.
func (g *Graph) RemoveEdge(e *Edge) {
	if !g.Contains(e) {
		return
	}
	e.src.edges.delete(e.id)
	e.dst.edges.delete(e.id)
	g.dropEdge(e)
}

// RemoveNode removes every incident edge, announcing each, and then the node.
// While the node's Removed event is dispatched its Edges still lists the
// edges it had, so observers can clean up after them.
func (g *Graph) RemoveNode(n *Node) {
	if !g.Contains(n) {
		return
	}
	for _, e := range n.Edges() {
		if other := e.Other(n); other != n {
			other.edges.delete(e.id)
		}
		g.dropEdge(e)
	}

	g.nodes.delete(n.name)
	g.Emit(Removed, n)
	n.graph = nil
}

func (g *Graph) dropEdge(e *Edge) {
	g.edges.delete(e.id)
	g.Emit(Removed, e)
	e.graph = nil
}

// Clear empties the graph in place and restores the default stencils. Only a
// NewGraph event is published; the graph value itself stays the same, so
// subscribers keep working.
func (g *Graph) Clear() {
	for _, e := range g.edges.orderedValues() {
		e.graph = nil
	}
	for _, n := range g.nodes.orderedValues() {
		n.graph = nil
	}
	g.reset()
	g.Emit(NewGraph, nil)
}
