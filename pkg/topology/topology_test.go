package topology

import (
	"reflect"
	"testing"

	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/stencil"
)

func build(t *testing.T, names []string, edges [][2]string) *model.Graph {
	t.Helper()
	g := model.New()
	for _, name := range names {
		if _, err := g.CreateNode(name); err != nil {
			t.Fatalf("CreateNode(%q): %v", name, err)
		}
	}
	for _, e := range edges {
		if _, err := g.CreateEdge(g.Node(e[0]), g.Node(e[1])); err != nil {
			t.Fatalf("CreateEdge(%v): %v", e, err)
		}
	}
	return g
}

func TestAnalyzeAcyclic(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})

	r := Analyze(g, nil)

	if r.Nodes != 4 || r.Edges != 3 {
		t.Errorf("counts = %d nodes, %d edges", r.Nodes, r.Edges)
	}
	if !r.Acyclic() {
		t.Errorf("expected no cycles, got %v and loops %v", r.Cycles, r.SelfLoops)
	}
	want := [][]string{{"a", "b", "c"}, {"d"}}
	if !reflect.DeepEqual(r.Components, want) {
		t.Errorf("components = %v, want %v", r.Components, want)
	}
}

func TestAnalyzeCycles(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "x", "y", "z"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"x", "y"}, {"y", "x"}, {"z", "z"}, {"c", "x"}},
	)

	r := Analyze(g, nil)

	want := [][]string{{"x", "y"}, {"a", "b", "c"}}
	if !reflect.DeepEqual(r.Cycles, want) {
		t.Errorf("cycles = %v, want %v", r.Cycles, want)
	}
	if !reflect.DeepEqual(r.SelfLoops, []string{"z"}) {
		t.Errorf("self loops = %v", r.SelfLoops)
	}
	if len(r.Components) != 2 {
		t.Errorf("components = %v", r.Components)
	}
}

func TestParallelEdgesCollapse(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}, {"b", "a"}})

	idx := NewIndex(g)
	if got := idx.Directed().Edges().Len(); got != 2 {
		t.Errorf("directed edges = %d, want 2", got)
	}
	r := Analyze(g, nil)
	if r.Edges != 3 || len(r.Cycles) != 1 {
		t.Errorf("edges %d, cycles %v", r.Edges, r.Cycles)
	}
}

func TestUnresolvedStencils(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.Node("b").SetStencil("octagon")
	g.Edges()[0].SetStencil("wiggly")

	r := Analyze(g, stencil.Default(stencil.FixedMeasurer{CharWidth: 6, LineHeight: 10}))

	want := []Unresolved{
		{Element: `node "b"`, Stencil: "octagon"},
		{Element: "edge 1", Stencil: "wiggly"},
	}
	if !reflect.DeepEqual(r.Unresolved, want) {
		t.Errorf("unresolved = %v, want %v", r.Unresolved, want)
	}
}

func TestIndexNames(t *testing.T) {
	g := build(t, []string{"first", "second"}, nil)
	idx := NewIndex(g)

	id, ok := idx.ID("second")
	if !ok || idx.Name(id) != "second" {
		t.Errorf("ID/Name round trip failed: %d %v", id, ok)
	}
	if idx.Name(42) != "" {
		t.Error("unknown id has a name")
	}
}
