package selection

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
)

// Previewer shows elements at provisional positions without touching the
// graph.
type Previewer interface {
	PreviewNode(n *model.Node, p geometry.Point)
	PreviewEdge(e *model.Edge)
}

// Dragger moves nodes in response to a Manager's Pick, Drag and Drop
// events. Only nodes are dragged; edges follow their endpoints.
type Dragger struct {
	sel     *Manager
	preview Previewer

	nodes  []*model.Node
	origin map[*model.Node]geometry.Point
	edges  []*model.Edge

	tokens []pubsub.Token
}

// NewDragger attaches a dragger to sel. preview may be nil, in which case
// positions only change on drop.
func NewDragger(sel *Manager, preview Previewer) *Dragger {
	d := &Dragger{sel: sel, preview: preview}
	d.tokens = []pubsub.Token{
		sel.Subscribe(Pick, func(_ any, e Event) { d.pick(e.Element) }),
		sel.Subscribe(Drag, func(_ any, e Event) { d.drag(e.Delta) }),
		sel.Subscribe(Drop, func(_ any, e Event) { d.drop(e.Delta) }),
	}
	return d
}

// Close detaches the dragger.
func (d *Dragger) Close() {
	for _, t := range d.tokens {
		d.sel.Unsubscribe(t)
	}
	d.tokens = nil
}

// Nodes returns the nodes of the drag in progress.
func (d *Dragger) Nodes() []*model.Node { return d.nodes }

// Edges returns the edges touching the dragged nodes.
func (d *Dragger) Edges() []*model.Edge { return d.edges }

// pick captures the clicked node, or the whole selection when the clicked
// node is part of it.
func (d *Dragger) pick(target model.Element) {
	d.reset()
	n, ok := target.(*model.Node)
	if !ok {
		return
	}

	set := []*model.Node{n}
	if d.sel.IsSelected(n) {
		set = d.sel.Nodes()
	}

	seen := make(map[*model.Edge]bool)
	for _, n := range set {
		d.origin[n] = n.Position()
		d.nodes = append(d.nodes, n)
		for _, e := range n.Edges() {
			if !seen[e] {
				seen[e] = true
				d.edges = append(d.edges, e)
			}
		}
	}
}

func (d *Dragger) drag(delta geometry.Point) {
	if d.preview == nil {
		return
	}
	for _, n := range d.nodes {
		d.preview.PreviewNode(n, r2.Add(d.origin[n], delta))
	}
	for _, e := range d.edges {
		d.preview.PreviewEdge(e)
	}
}

// drop commits the final positions, one Moved event per node.
func (d *Dragger) drop(delta geometry.Point) {
	nodes, origin := d.nodes, d.origin
	d.reset()
	for _, n := range nodes {
		if n.Graph() == nil {
			continue // removed during the drag
		}
		n.SetPosition(r2.Add(origin[n], delta))
	}
}

func (d *Dragger) reset() {
	d.nodes = nil
	d.edges = nil
	d.origin = make(map[*model.Node]geometry.Point)
}
