package document

import (
	"maps"
	"slices"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
)

// Import adds the contents of doc to g. The whole document is checked first,
// so a rejected document leaves g untouched. Elements are then created
// without events and a single NewGraph event announces the result.
//
// Names already taken in g are replaced by generated names; such nodes keep
// the document name as their label unless the entry has one. Default stencils
// the graph's catalog does not know are ignored.
func Import(g *model.Graph, doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}

	if err := g.SetDefaultStencils(doc.DefaultNodeStencil, doc.DefaultEdgeStencil); err != nil {
		logging.Debug("ignoring document default stencils", "error", err)
	}

	g.Silently(func() {
		created := make(map[string]*model.Node, len(doc.Nodes))
		for _, entry := range doc.Nodes {
			n, err := g.CreateNode(entry.Name)
			if err != nil {
				n, _ = g.CreateNode("")
				logging.Debug("renamed imported node", "name", entry.Name, "as", n.Name())
			}
			if entry.Name != "" {
				created[entry.Name] = n
			}
			switch {
			case entry.Label != nil:
				n.SetLabel(entry.Label.ToModel())
			case n.Name() != entry.Name && entry.Name != "":
				// keep showing the name the document used
				n.SetLabel(model.PlainLabel(entry.Name))
			}
			if entry.Position != nil {
				n.SetPosition(geometry.Pt(entry.Position[0], entry.Position[1]))
			}
			if entry.Stencil != "" {
				n.SetStencil(entry.Stencil)
			}
			setData(n, entry.UserData)
		}

		for _, entry := range doc.Edges {
			e, err := g.CreateEdge(created[entry.Src], created[entry.Dst])
			if err != nil {
				// Validate guarantees both endpoints.
				logging.Error("creating imported edge", "src", entry.Src, "dst", entry.Dst, "error", err)
				continue
			}
			if entry.Label != nil {
				e.SetLabel(entry.Label.ToModel())
			}
			if entry.Stencil != "" {
				e.SetStencil(entry.Stencil)
			}
			setData(e, entry.UserData)
		}
	})

	logging.Debug("imported document", "name", doc.Name, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	g.Emit(model.NewGraph, nil)
	return nil
}

func setData(el model.Element, data map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(data)) {
		el.SetData(k, data[k])
	}
}

// Validate checks that doc can be imported: node names are unique and every
// edge refers to a declared node.
func Validate(doc *Document) error {
	if doc == nil || doc.Nodes == nil || doc.Edges == nil {
		return newError(CodeMalformed, "document needs both a nodes and an edges list")
	}

	declared := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.Name == "" {
			continue
		}
		if declared[n.Name] {
			return newError(CodeDuplicateName, "node %q is declared twice", n.Name)
		}
		declared[n.Name] = true
	}

	for i, e := range doc.Edges {
		for _, end := range []string{e.Src, e.Dst} {
			if !declared[end] {
				return newError(CodeDanglingEdge, "edge %d refers to unknown node %q", i, end)
			}
		}
	}
	return nil
}

// Export returns the document form of g.
func Export(g *model.Graph, h Header) *Document {
	nodeStencil, edgeStencil := g.DefaultStencils()
	doc := &Document{
		Name:               h.Name,
		Directed:           h.Directed,
		DefaultNodeStencil: nodeStencil,
		DefaultEdgeStencil: edgeStencil,
		Nodes:              make([]Node, 0, g.NodeCount()),
		Edges:              make([]Edge, 0, g.EdgeCount()),
		Attributes:         h.Attributes,
	}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, ExportNode(n))
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, ExportEdge(e))
	}
	return doc
}

// ExportNode returns the document entry for n.
func ExportNode(n *model.Node) Node {
	p := n.Position()
	return Node{
		Name:     n.Name(),
		Label:    fromModel(n.Label()),
		Position: &[2]float64{p.X, p.Y},
		Stencil:  n.Stencil(),
		UserData: userData(n),
	}
}

// ExportEdge returns the document entry for e.
func ExportEdge(e *model.Edge) Edge {
	return Edge{
		Src:      e.Src().Name(),
		Dst:      e.Dst().Name(),
		Label:    fromModel(e.Label()),
		Stencil:  e.Stencil(),
		UserData: userData(e),
	}
}

func userData(el model.Element) map[string]any {
	keys := el.DataKeys()
	if len(keys) == 0 {
		return nil
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k], _ = el.Data(k)
	}
	return out
}
