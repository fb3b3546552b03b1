package editor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ritzau/dotedit/pkg/document"
	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/layout"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/selection"
	"github.com/ritzau/dotedit/pkg/stencil"
)

// Circles around one character labels have a radius of 11.
func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	reg := stencil.Default(stencil.FixedMeasurer{CharWidth: 6, LineHeight: 10})
	e, err := New(reg, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func click(e *Editor, x, y float64) {
	p := selection.Pointer{Point: geometry.Pt(x, y)}
	e.Press(p)
	e.Release(p)
}

func addNode(t *testing.T, e *Editor, name string, x, y float64) *model.Node {
	t.Helper()
	n, err := e.AddNode(name, geometry.Pt(x, y))
	if err != nil {
		t.Fatalf("AddNode(%q): %v", name, err)
	}
	return n
}

func recordKinds(e *Editor) *[]model.EventKind {
	var kinds []model.EventKind
	e.Graph().SubscribeAll(func(_ any, ev model.Event) { kinds = append(kinds, ev.Kind) })
	return &kinds
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Select, AddNode, AddEdge, Remove} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("lasso"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestAddNodeModeCreatesOnClick(t *testing.T) {
	e := newTestEditor(t)
	if err := e.SetNodeStencil("box"); err != nil {
		t.Fatal(err)
	}
	e.SetMode(AddNode)
	kinds := recordKinds(e)

	click(e, 50, 60)

	nodes := e.Graph().Nodes()
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	n := nodes[0]
	if n.Position() != geometry.Pt(50, 60) || n.Stencil() != "box" {
		t.Errorf("node at %v with stencil %q", n.Position(), n.Stencil())
	}
	if len(*kinds) != 1 || (*kinds)[0] != model.Created {
		t.Errorf("events = %v, want a single created", *kinds)
	}
	if e.Selection().Len() != 0 {
		t.Error("clicks in add-node mode must not select")
	}
}

func TestAddEdgeMode(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)
	b := addNode(t, e, "b", 200, 0)
	if err := e.SetEdgeStencil("directed line"); err != nil {
		t.Fatal(err)
	}
	e.SetMode(AddEdge)

	click(e, 100, 100)
	if e.PendingEdgeStart() != nil {
		t.Fatal("a background click must not start an edge")
	}

	click(e, 0, 0)
	if e.PendingEdgeStart() != a {
		t.Fatalf("start = %v, want a", e.PendingEdgeStart())
	}
	click(e, 200, 0)

	edges := e.Graph().Edges()
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Src() != a || edges[0].Dst() != b || edges[0].Stencil() != "directed line" {
		t.Errorf("edge %v -> %v with %q", edges[0].Src(), edges[0].Dst(), edges[0].Stencil())
	}
	if e.PendingEdgeStart() != nil {
		t.Error("start must be cleared after the edge is created")
	}
}

func TestAddEdgeCancel(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)
	addNode(t, e, "b", 200, 0)
	e.SetMode(AddEdge)

	click(e, 0, 0)
	e.CancelEdge()
	click(e, 200, 0)
	if e.PendingEdgeStart() == a || e.Graph().EdgeCount() != 0 {
		t.Error("cancelled edge must not be created")
	}

	e.SetMode(Select)
	if e.PendingEdgeStart() != nil {
		t.Error("leaving add-edge mode must drop the start node")
	}

	e.SetMode(AddEdge)
	click(e, 0, 0)
	e.Graph().RemoveNode(a)
	if e.PendingEdgeStart() != nil {
		t.Error("removing the start node must drop it")
	}
}

func TestRemoveMode(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)
	b := addNode(t, e, "b", 200, 0)
	if _, err := e.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}
	e.SetMode(Remove)

	click(e, 100, 0)
	if e.Graph().EdgeCount() != 0 || e.Graph().NodeCount() != 2 {
		t.Fatalf("after clicking the edge: %d nodes, %d edges", e.Graph().NodeCount(), e.Graph().EdgeCount())
	}
	click(e, 0, 0)
	if e.Graph().Contains(a) || !e.Graph().Contains(b) {
		t.Error("clicking a should remove only a")
	}
	click(e, 100, 100)
	if e.Graph().NodeCount() != 1 {
		t.Error("a background click must not remove anything")
	}
}

func TestSelectModeAndPolicy(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)

	click(e, 0, 0)
	if !e.Selection().IsSelected(a) {
		t.Fatal("click in select mode should select a")
	}

	e.SetMode(AddNode)
	if e.Selection().Len() != 0 {
		t.Error("switching away from select mode should clear the selection")
	}
	e.SetMode(Select)
	click(e, 0, 0)
	if !e.Selection().IsSelected(a) {
		t.Error("selection should work again in select mode")
	}
}

func TestRemoveSelected(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)
	b := addNode(t, e, "b", 200, 0)
	c := addNode(t, e, "c", 0, 200)
	ab, _ := e.AddEdge(a, b)
	bc, _ := e.AddEdge(b, c)

	if e.RemoveSelected() {
		t.Error("nothing selected, nothing to remove")
	}

	e.Selection().Select(a)
	e.Selection().Select(ab)
	e.Selection().Select(bc)
	if !e.RemoveSelected() {
		t.Fatal("RemoveSelected = false")
	}
	if e.Graph().NodeCount() != 2 || e.Graph().EdgeCount() != 0 {
		t.Errorf("%d nodes, %d edges left", e.Graph().NodeCount(), e.Graph().EdgeCount())
	}
	if e.Selection().Len() != 0 {
		t.Errorf("selection = %v", e.Selection().Selection())
	}
}

func TestUnknownStencilsAreRejected(t *testing.T) {
	e := newTestEditor(t)
	if err := e.SetNodeStencil("octagon"); !errors.Is(err, model.ErrUnknownStencil) {
		t.Errorf("SetNodeStencil = %v", err)
	}
	if err := e.SetEdgeStencil("box"); !errors.Is(err, model.ErrUnknownStencil) {
		t.Errorf("SetEdgeStencil(box) = %v", err)
	}
	if e.NodeStencil() != model.DefaultNodeStencil || e.EdgeStencil() != model.DefaultEdgeStencil {
		t.Error("rejected stencils must not change the current ones")
	}

	reg := stencil.Default(stencil.FixedMeasurer{CharWidth: 6, LineHeight: 10})
	cfg := DefaultConfig()
	cfg.NodeStencil = "octagon"
	if _, err := New(reg, cfg); err == nil {
		t.Error("New should reject an unknown default stencil")
	}
}

func TestAlignAndLayout(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)
	b := addNode(t, e, "b", 100, 50)
	e.Selection().Select(a)
	e.Selection().Select(b)

	if err := e.Align(layout.Left); err != nil {
		t.Fatalf("Align: %v", err)
	}
	if a.Position().X != 0 || b.Position().X != 0 || b.Position().Y != 50 {
		t.Errorf("positions after align: %v %v", a.Position(), b.Position())
	}

	if err := e.Layout("Layout.Bogus"); !errors.Is(err, layout.ErrUnknownTool) {
		t.Errorf("Layout(bogus) = %v", err)
	}
	if err := e.Layout(layout.Center); err != nil {
		t.Errorf("Layout(center) = %v", err)
	}
}

func TestImportExport(t *testing.T) {
	e := newTestEditor(t)
	addNode(t, e, "old", 0, 0)
	kinds := recordKinds(e)

	in := `{"name":"demo","directed":true,
		"nodes":["a",{"name":"b","position":[10,20],"stencil":"box"}],
		"edges":[{"src":"a","dst":"b"}]}`
	if err := e.Import(strings.NewReader(in), true); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if e.Graph().Node("old") != nil || e.Graph().NodeCount() != 2 || e.Graph().EdgeCount() != 1 {
		t.Fatalf("graph after import: %d nodes, %d edges", e.Graph().NodeCount(), e.Graph().EdgeCount())
	}
	if n := len(*kinds); n != 2 || (*kinds)[0] != model.NewGraph || (*kinds)[1] != model.NewGraph {
		t.Errorf("events = %v, want newgraph from clear and import", *kinds)
	}

	var out bytes.Buffer
	if err := e.Export(&out); err != nil {
		t.Fatalf("Export: %v", err)
	}
	doc, err := document.Parse(out.Bytes())
	if err != nil {
		t.Fatalf("exported document does not parse: %v", err)
	}
	if doc.Name != "demo" || !doc.Directed || len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Errorf("exported %+v", doc)
	}
}

func TestRejectedImportKeepsGraph(t *testing.T) {
	e := newTestEditor(t)
	addNode(t, e, "keep", 0, 0)

	err := e.Import(strings.NewReader(`{"nodes":["x","x"],"edges":[]}`), true)
	if !document.Is(err, document.CodeDuplicateName) {
		t.Fatalf("Import = %v, want DUPLICATE_NAME", err)
	}
	if e.Graph().Node("keep") == nil || e.Graph().NodeCount() != 1 {
		t.Error("a rejected document must leave the graph untouched")
	}
}

func TestClearForgetsHeader(t *testing.T) {
	e := newTestEditor(t)
	e.SetHeader(document.Header{Name: "demo"})
	addNode(t, e, "a", 0, 0)

	e.Clear()
	if e.Graph().NodeCount() != 0 || e.Header().Name != "" {
		t.Errorf("after Clear: %d nodes, header %+v", e.Graph().NodeCount(), e.Header())
	}
}

func TestLookup(t *testing.T) {
	e := newTestEditor(t)
	a := addNode(t, e, "a", 0, 0)
	ab, _ := e.AddEdge(a, a)

	if n, err := e.LookupNode("a"); err != nil || n != a {
		t.Errorf("LookupNode(a) = %v, %v", n, err)
	}
	if _, err := e.LookupNode("z"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupNode(z) = %v", err)
	}
	if ed, err := e.LookupEdge(ab.ID()); err != nil || ed != ab {
		t.Errorf("LookupEdge = %v, %v", ed, err)
	}
	if _, err := e.LookupEdge(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupEdge(99) = %v", err)
	}
}

func TestClearKeepsConfiguredDefaults(t *testing.T) {
	reg := stencil.Default(stencil.FixedMeasurer{CharWidth: 6, LineHeight: 10})
	cfg := DefaultConfig()
	cfg.NodeStencil = "box"
	cfg.EdgeStencil = "directed line"
	e, err := New(reg, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	e.Clear()
	node, edge := e.Graph().DefaultStencils()
	if node != "box" || edge != "directed line" {
		t.Errorf("defaults after Clear = %q, %q", node, edge)
	}
}
