package topology

import (
	"gonum.org/v1/gonum/graph"
)

// sccFinder runs Tarjan's algorithm and keeps the components that form a
// cycle, that is, those with more than one node.
type sccFinder struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	cycles  [][]int64
}

func newSCCFinder(g graph.Directed) *sccFinder {
	return &sccFinder{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// cyclicComponents returns every strongly connected component with more than
// one node, in the order their roots complete.
func cyclicComponents(g graph.Directed) [][]int64 {
	f := newSCCFinder(g)
	nodes := g.Nodes()
	var ids []int64
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	// gonum iterates maps; visit in ID order for stable output.
	sortIDs(ids)
	for _, id := range ids {
		if _, visited := f.indices[id]; !visited {
			f.connect(id)
		}
	}
	return f.cycles
}

func (f *sccFinder) connect(id int64) {
	f.indices[id] = f.index
	f.lowLink[id] = f.index
	f.index++

	f.stack = append(f.stack, id)
	f.onStack[id] = true

	successors := f.graph.From(id)
	var next []int64
	for successors.Next() {
		next = append(next, successors.Node().ID())
	}
	sortIDs(next)
	for _, s := range next {
		if _, visited := f.indices[s]; !visited {
			f.connect(s)
			f.lowLink[id] = min(f.lowLink[id], f.lowLink[s])
		} else if f.onStack[s] {
			f.lowLink[id] = min(f.lowLink[id], f.indices[s])
		}
	}

	if f.lowLink[id] != f.indices[id] {
		return
	}
	var scc []int64
	for {
		w := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		f.onStack[w] = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	if len(scc) > 1 {
		sortIDs(scc)
		f.cycles = append(f.cycles, scc)
	}
}
