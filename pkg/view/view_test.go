package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/selection"
	"github.com/ritzau/dotedit/pkg/stencil"
)

// Labels are 6 units per rune and 10 high, so a box around "ab" is 22x13.
func newTestView(t *testing.T) (*model.Graph, *View) {
	t.Helper()
	reg := stencil.Default(stencil.FixedMeasurer{CharWidth: 6, LineHeight: 10})
	g := model.New(model.WithCatalog(reg))
	return g, New(g, reg)
}

func boxNode(t *testing.T, g *model.Graph, name string, p geometry.Point) *model.Node {
	t.Helper()
	n, err := g.CreateNode(name)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	n.SetStencil("box")
	n.SetPosition(p)
	return n
}

func TestNodeBBoxFollowsLabelAndPosition(t *testing.T) {
	g, v := newTestView(t)
	n := boxNode(t, g, "ab", geometry.Pt(100, 50))

	want := geometry.Rect{X: 89, Y: 43.5, Width: 22, Height: 13}
	if got := v.BBox(n); got != want {
		t.Errorf("BBox = %+v, want %+v", got, want)
	}

	n.SetLabel(model.PlainLabel("abcd"))
	if got := v.BBox(n).Width; got != 34 {
		t.Errorf("width after relabel = %v, want 34", got)
	}
}

func TestEdgeEndpointsAreOnBoundaries(t *testing.T) {
	g, v := newTestView(t)
	a := boxNode(t, g, "ab", geometry.Pt(0, 0))
	b := boxNode(t, g, "cd", geometry.Pt(200, 0))
	e, _ := g.CreateEdge(a, b)

	s, ok := v.Edge(e)
	if !ok {
		t.Fatal("no state for edge")
	}
	if s.Start != geometry.Pt(11, 0) || s.End != geometry.Pt(189, 0) {
		t.Errorf("endpoints = %v -> %v", s.Start, s.End)
	}

	b.SetPosition(geometry.Pt(0, 100))
	s, _ = v.Edge(e)
	if s.Start != geometry.Pt(0, 6.5) || s.End != geometry.Pt(0, 93.5) {
		t.Errorf("endpoints after move = %v -> %v", s.Start, s.End)
	}
}

func TestUnknownStencilFallsBack(t *testing.T) {
	g, v := newTestView(t)
	n, _ := g.CreateNode("x")
	n.SetStencil("octagon")

	s, ok := v.Node(n)
	if !ok || s.Stencil.Name() != "circle" {
		t.Errorf("stencil = %v", s.Stencil)
	}
	if n.Stencil() != "octagon" {
		t.Error("view must not rewrite the stored stencil name")
	}
}

func TestHitTest(t *testing.T) {
	g, v := newTestView(t)
	a := boxNode(t, g, "ab", geometry.Pt(0, 0))
	b := boxNode(t, g, "cd", geometry.Pt(200, 0))
	e, _ := g.CreateEdge(a, b)

	tests := []struct {
		name string
		p    geometry.Point
		want model.Element
	}{
		{"node centre", geometry.Pt(1, 1), a},
		{"other node", geometry.Pt(195, -5), b},
		{"on edge", geometry.Pt(100, 3), e},
		{"near edge", geometry.Pt(100, 4), e},
		{"off edge", geometry.Pt(100, 5), nil},
		{"background", geometry.Pt(500, 500), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.HitTest(tt.p); got != tt.want {
				t.Errorf("HitTest(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestHitTestTopmostNode(t *testing.T) {
	g, v := newTestView(t)
	boxNode(t, g, "ab", geometry.Pt(0, 0))
	top := boxNode(t, g, "cd", geometry.Pt(5, 0))

	if got := v.HitTest(geometry.Pt(3, 0)); got != top {
		t.Errorf("HitTest = %v, want the later node", got)
	}
}

func TestPreviewLeavesGraphAlone(t *testing.T) {
	g, v := newTestView(t)
	a := boxNode(t, g, "ab", geometry.Pt(0, 0))
	b := boxNode(t, g, "cd", geometry.Pt(200, 0))
	e, _ := g.CreateEdge(a, b)

	v.PreviewNode(a, geometry.Pt(100, 0))
	v.PreviewEdge(e)

	if a.Position() != geometry.Pt(0, 0) {
		t.Errorf("graph position changed to %v", a.Position())
	}
	if s, _ := v.Node(a); s.Position != geometry.Pt(100, 0) {
		t.Errorf("preview position = %v", s.Position)
	}
	if s, _ := v.Edge(e); s.Start != geometry.Pt(111, 0) {
		t.Errorf("edge start = %v, want (111,0)", s.Start)
	}

	a.SetPosition(geometry.Pt(50, 0))
	if s, _ := v.Node(a); s.Position != geometry.Pt(50, 0) {
		t.Errorf("committed position = %v", s.Position)
	}
}

func TestHighlightFollowsSelection(t *testing.T) {
	g, v := newTestView(t)
	a := boxNode(t, g, "ab", geometry.Pt(0, 0))
	sel := selection.New(g, v)
	v.Attach(sel)

	sel.Select(a)
	if s, _ := v.Node(a); !s.Highlight {
		t.Fatal("selected node not highlighted")
	}

	a.SetLabel(model.PlainLabel("longer"))
	if s, _ := v.Node(a); !s.Highlight {
		t.Error("highlight lost on redraw")
	}

	sel.Deselect(a)
	if s, _ := v.Node(a); s.Highlight {
		t.Error("deselected node still highlighted")
	}
}

func TestRemovalAndNewGraph(t *testing.T) {
	g, v := newTestView(t)
	a := boxNode(t, g, "ab", geometry.Pt(0, 0))
	b := boxNode(t, g, "cd", geometry.Pt(200, 0))
	e, _ := g.CreateEdge(a, b)

	g.RemoveNode(a)
	if _, ok := v.Node(a); ok {
		t.Error("removed node still cached")
	}
	if _, ok := v.Edge(e); ok {
		t.Error("edge of removed node still cached")
	}

	g.Clear()
	if _, ok := v.Node(b); ok {
		t.Error("cache survived Clear")
	}
	c, _ := g.CreateNode("c")
	if _, ok := v.Node(c); !ok {
		t.Error("view stopped following the graph after Clear")
	}
}

func TestSilentImportIsPickedUpByNewGraph(t *testing.T) {
	g, v := newTestView(t)
	var n *model.Node
	g.Silently(func() { n, _ = g.CreateNode("quiet") })
	if _, ok := v.Node(n); ok {
		t.Fatal("silent create reached the view")
	}
	g.Emit(model.NewGraph, nil)
	if _, ok := v.Node(n); !ok {
		t.Error("NewGraph did not redraw")
	}
}

func TestRender(t *testing.T) {
	g, v := newTestView(t)
	a := boxNode(t, g, "ab", geometry.Pt(0, 0))
	b := boxNode(t, g, `q"t`, geometry.Pt(900, 100))
	e, _ := g.CreateEdge(a, b)
	e.SetStencil("directed line")
	e.SetLabel(model.PlainLabel("uses"))
	v.SetHighlight(a, true)

	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`id="node-ab"`,
		`class="dotedit-node dotedit-box dotedit-hl"`,
		`id="node-q&#34;t"`,
		`id="edge-1"`,
		`marker-end="url(#Arrow)"`,
		">uses</text>",
		`viewBox="-21 -17 945 617"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}
