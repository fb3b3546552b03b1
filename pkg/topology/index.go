package topology

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/dotedit/pkg/model"
)

// Index mirrors a diagram in gonum graphs. Node IDs follow the diagram's
// node order. Self loops cannot be stored in simple graphs and are counted
// separately.
type Index struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	ids        map[string]int64
	names      []string
	loops      []string
}

// NewIndex builds the index of g.
func NewIndex(g *model.Graph) *Index {
	idx := &Index{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		ids:        make(map[string]int64, g.NodeCount()),
	}

	for _, n := range g.Nodes() {
		id := int64(len(idx.names))
		idx.ids[n.Name()] = id
		idx.names = append(idx.names, n.Name())
		idx.directed.AddNode(simple.Node(id))
		idx.undirected.AddNode(simple.Node(id))
	}

	for _, e := range g.Edges() {
		if e.IsLoop() {
			idx.loops = append(idx.loops, e.Src().Name())
			continue
		}
		from, to := idx.ids[e.Src().Name()], idx.ids[e.Dst().Name()]
		if !idx.directed.HasEdgeFromTo(from, to) {
			idx.directed.SetEdge(idx.directed.NewEdge(simple.Node(from), simple.Node(to)))
		}
		if !idx.undirected.HasEdgeBetween(from, to) {
			idx.undirected.SetEdge(idx.undirected.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}
	return idx
}

// Directed returns the directed view.
func (idx *Index) Directed() *simple.DirectedGraph { return idx.directed }

// Name returns the node name of id.
func (idx *Index) Name(id int64) string {
	if id < 0 || id >= int64(len(idx.names)) {
		return ""
	}
	return idx.names[id]
}

// ID returns the gonum ID of a node name.
func (idx *Index) ID(name string) (int64, bool) {
	id, ok := idx.ids[name]
	return id, ok
}

// SelfLoops returns the names of nodes with an edge to themselves, once per
// loop.
func (idx *Index) SelfLoops() []string { return idx.loops }
