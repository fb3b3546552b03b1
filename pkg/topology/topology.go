// Package topology summarises the structure of a diagram: its size, the
// connected components, directed cycles and stencil names that do not
// resolve.
package topology

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/dotedit/pkg/model"
)

// Unresolved is an element whose stencil name is not in the catalog.
type Unresolved struct {
	Element string `json:"element"`
	Stencil string `json:"stencil"`
}

// Report is the structural summary of one graph.
type Report struct {
	Nodes      int          `json:"nodes"`
	Edges      int          `json:"edges"`
	Components [][]string   `json:"components"`
	Cycles     [][]string   `json:"cycles"`
	SelfLoops  []string     `json:"selfLoops"`
	Unresolved []Unresolved `json:"unresolved"`
}

// Acyclic reports whether the graph has neither cycles nor self loops.
func (r *Report) Acyclic() bool {
	return len(r.Cycles) == 0 && len(r.SelfLoops) == 0
}

// Analyze builds the report of g. Stencil names are checked against cat when
// it is not nil.
func Analyze(g *model.Graph, cat model.StencilCatalog) *Report {
	idx := NewIndex(g)
	r := &Report{
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		Components: [][]string{},
		Cycles:     [][]string{},
		SelfLoops:  slices.Clone(idx.SelfLoops()),
		Unresolved: []Unresolved{},
	}

	for _, c := range topo.ConnectedComponents(idx.undirected) {
		ids := make([]int64, 0, len(c))
		for _, n := range c {
			ids = append(ids, n.ID())
		}
		r.Components = append(r.Components, idx.namesOf(ids))
	}
	slices.SortFunc(r.Components, func(a, b []string) int {
		ia, _ := idx.ID(a[0])
		ib, _ := idx.ID(b[0])
		return cmp.Compare(ia, ib)
	})

	for _, scc := range cyclicComponents(idx.directed) {
		r.Cycles = append(r.Cycles, idx.namesOf(scc))
	}
	if r.SelfLoops == nil {
		r.SelfLoops = []string{}
	}

	if cat != nil {
		for _, n := range g.Nodes() {
			if !cat.HasNodeStencil(n.Stencil()) {
				r.Unresolved = append(r.Unresolved, Unresolved{Element: n.String(), Stencil: n.Stencil()})
			}
		}
		for _, e := range g.Edges() {
			if !cat.HasEdgeStencil(e.Stencil()) {
				r.Unresolved = append(r.Unresolved, Unresolved{Element: e.String(), Stencil: e.Stencil()})
			}
		}
	}
	return r
}

// namesOf sorts ids and maps them to node names.
func (idx *Index) namesOf(ids []int64) []string {
	sortIDs(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.Name(id)
	}
	return out
}

func sortIDs(ids []int64) { slices.Sort(ids) }
