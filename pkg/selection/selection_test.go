package selection

import (
	"reflect"
	"testing"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/model"
)

// hitMap places elements at exact points.
type hitMap map[geometry.Point]model.Element

func (h hitMap) HitTest(p geometry.Point) model.Element { return h[p] }

type change struct {
	el       model.Element
	selected bool
}

func watch(m *Manager) *[]change {
	var out []change
	m.Subscribe(Changed, func(_ any, e Event) { out = append(out, change{e.Element, e.Selected}) })
	return &out
}

func fixture(t *testing.T) (*model.Graph, *model.Node, *model.Node, *model.Edge) {
	t.Helper()
	g := model.New()
	a, _ := g.CreateNode("a")
	b, _ := g.CreateNode("b")
	e, err := g.CreateEdge(a, b)
	if err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	return g, a, b, e
}

func click(m *Manager, p geometry.Point, mod bool) {
	m.Press(Pointer{Point: p, Modifier: mod})
	m.Release(Pointer{Point: p, Modifier: mod})
}

func TestSelectAndDeselect(t *testing.T) {
	g, a, b, e := fixture(t)
	m := New(g, nil)
	changes := watch(m)

	m.Select(a)
	m.Select(a) // no-op
	m.Select(e)
	m.Select(b)
	m.Deselect(e)
	m.Deselect(e) // no-op

	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{a, b}) {
		t.Errorf("Selection = %v", got)
	}
	want := []change{{a, true}, {e, true}, {b, true}, {e, false}}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %v, want %v", *changes, want)
	}
}

func TestDeselectAllIsReverseOrder(t *testing.T) {
	g, a, b, e := fixture(t)
	m := New(g, nil)
	m.Select(a)
	m.Select(e)
	m.Select(b)
	changes := watch(m)

	m.DeselectAll()

	want := []change{{b, false}, {e, false}, {a, false}}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %v, want %v", *changes, want)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestPolicy(t *testing.T) {
	g, a, b, e := fixture(t)
	m := New(g, nil)

	m.SetPolicy(Policy{AllowNodes: true})
	m.Select(e)
	if m.IsSelected(e) {
		t.Error("edge selected although edges are disallowed")
	}

	m.Select(a)
	m.Select(b)
	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{b}) {
		t.Errorf("single selection = %v, want [b]", got)
	}

	m.SetPolicy(Policy{AllowEdges: true})
	if m.Len() != 0 {
		t.Errorf("node stayed selected after nodes were disallowed: %v", m.Selection())
	}
}

func TestClickSemantics(t *testing.T) {
	g, a, b, e := fixture(t)
	pa, pb, pe, bg := geometry.Pt(0, 0), geometry.Pt(100, 0), geometry.Pt(50, 0), geometry.Pt(50, 50)
	m := New(g, hitMap{pa: a, pb: b, pe: e})

	click(m, pa, false)
	click(m, pb, true)
	click(m, pe, true)
	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{a, b, e}) {
		t.Fatalf("after modifier clicks = %v", got)
	}

	click(m, pb, true) // toggle off
	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{a, e}) {
		t.Fatalf("after toggle = %v", got)
	}

	click(m, pa, false) // selected, no modifier: reset to just a
	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{a}) {
		t.Fatalf("after plain click on selected = %v", got)
	}

	click(m, pb, false) // unselected, no modifier: replace
	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{b}) {
		t.Fatalf("after plain click on unselected = %v", got)
	}

	click(m, bg, false)
	if m.Len() != 0 {
		t.Errorf("background click left %v selected", m.Selection())
	}
}

func TestClickOnDisallowedKindDoesNothing(t *testing.T) {
	g, a, _, e := fixture(t)
	pa, pe := geometry.Pt(0, 0), geometry.Pt(50, 0)
	m := New(g, hitMap{pa: a, pe: e})
	m.SetPolicy(Policy{AllowEdges: true, AllowMultiple: true})

	click(m, pe, false)
	click(m, pa, false)

	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{e}) {
		t.Errorf("Selection = %v, want [edge]", got)
	}
}

func TestClickEventWhenSelectionDisabled(t *testing.T) {
	g, a, _, _ := fixture(t)
	pa := geometry.Pt(3, 4)
	m := New(g, hitMap{pa: a})
	m.SetPolicy(Policy{})

	var clicks []Event
	m.Subscribe(Click, func(_ any, e Event) { clicks = append(clicks, e) })
	changes := watch(m)

	click(m, pa, false)
	click(m, geometry.Pt(9, 9), true)

	if len(clicks) != 2 {
		t.Fatalf("got %d click events, want 2", len(clicks))
	}
	if clicks[0].Element != a || clicks[0].Point != pa {
		t.Errorf("first click = %+v", clicks[0])
	}
	if clicks[1].Element != nil || !clicks[1].Modifier {
		t.Errorf("second click = %+v", clicks[1])
	}
	if len(*changes) != 0 {
		t.Errorf("selection changed: %v", *changes)
	}
}

func TestDragThreshold(t *testing.T) {
	g, a, _, _ := fixture(t)
	m := New(g, hitMap{geometry.Pt(0, 0): a})

	var kinds []EventKind
	m.SubscribeAll(func(_ any, e Event) { kinds = append(kinds, e.Kind) })

	m.Press(Pointer{Point: geometry.Pt(0, 0)})
	m.Move(Pointer{Point: geometry.Pt(2, -2)}) // within threshold
	m.Release(Pointer{Point: geometry.Pt(2, -2)})

	if !reflect.DeepEqual(kinds, []EventKind{Changed}) {
		t.Fatalf("small move should be a click, got %v", kinds)
	}

	kinds = nil
	m.Press(Pointer{Point: geometry.Pt(0, 0)})
	m.Move(Pointer{Point: geometry.Pt(3, 0)})
	m.Move(Pointer{Point: geometry.Pt(10, 5)})
	m.Release(Pointer{Point: geometry.Pt(12, 5)})

	if want := []EventKind{Pick, Drag, Drag, Drop}; !reflect.DeepEqual(kinds, want) {
		t.Errorf("drag events = %v, want %v", kinds, want)
	}
}

func TestNoDragWhenDisallowed(t *testing.T) {
	g, a, _, _ := fixture(t)
	m := New(g, hitMap{geometry.Pt(0, 0): a})
	p := DefaultPolicy()
	p.AllowDrag = false
	m.SetPolicy(p)

	m.Press(Pointer{Point: geometry.Pt(0, 0)})
	m.Move(Pointer{Point: geometry.Pt(50, 50)})
	if m.Dragging() {
		t.Error("drag started although disallowed")
	}
	m.Release(Pointer{Point: geometry.Pt(50, 50)})
	if !m.IsSelected(a) {
		t.Error("release without drag should click the pressed element")
	}
}

func TestRemovalDeselectsSilently(t *testing.T) {
	g, a, b, e := fixture(t)
	c, _ := g.CreateNode("c")
	other, _ := g.CreateEdge(b, c)
	m := New(g, nil)
	m.Select(e)
	m.Select(other)
	m.Select(c)
	changes := watch(m)

	g.RemoveNode(a)

	if got := m.Selection(); !reflect.DeepEqual(got, []model.Element{other, c}) {
		t.Errorf("Selection = %v", got)
	}

	g.RemoveEdge(other)
	g.RemoveNode(c)
	if m.Len() != 0 {
		t.Errorf("Selection = %v", m.Selection())
	}
	if len(*changes) != 0 {
		t.Errorf("removal announced selection changes: %v", *changes)
	}
}

func TestNewGraphClearsSilently(t *testing.T) {
	g, a, b, _ := fixture(t)
	m := New(g, nil)
	m.Select(a)
	m.Select(b)
	changes := watch(m)

	g.Clear()

	if m.Len() != 0 || len(*changes) != 0 {
		t.Errorf("after Clear: selection %v, changes %v", m.Selection(), *changes)
	}
}

func TestSelectionNeverHoldsRemovedElements(t *testing.T) {
	g := model.New()
	var nodes []*model.Node
	for i := 0; i < 5; i++ {
		n, _ := g.CreateNode("")
		nodes = append(nodes, n)
	}
	for i := 0; i < 5; i++ {
		g.CreateEdge(nodes[i], nodes[(i+1)%5])
		g.CreateEdge(nodes[i], nodes[(i+2)%5])
	}
	m := New(g, nil)
	for _, n := range g.Nodes() {
		m.Select(n)
	}
	for _, e := range g.Edges() {
		m.Select(e)
	}

	g.RemoveNode(nodes[2])
	g.RemoveEdge(g.Edges()[0])
	g.RemoveNode(nodes[4])

	for _, el := range m.Selection() {
		if !g.Contains(el) {
			t.Errorf("%s selected but no longer in the graph", el)
		}
	}
}
