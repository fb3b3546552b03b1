// Package selection tracks which elements of a view are selected and turns
// raw pointer input into clicks, selection changes and drags.
package selection

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
)

// DragThreshold is how far, on either axis, the pointer must travel after a
// press before the gesture counts as a drag instead of a click.
const DragThreshold = 2

// Policy restricts what may be selected.
type Policy struct {
	AllowNodes    bool
	AllowEdges    bool
	AllowMultiple bool
	AllowDrag     bool
}

// DefaultPolicy allows everything.
func DefaultPolicy() Policy {
	return Policy{AllowNodes: true, AllowEdges: true, AllowMultiple: true, AllowDrag: true}
}

func (p Policy) allows(el model.Element) bool {
	switch el.(type) {
	case *model.Node:
		return p.AllowNodes
	case *model.Edge:
		return p.AllowEdges
	}
	return false
}

// HitTester finds the element under a point, or nil for the background.
type HitTester interface {
	HitTest(p geometry.Point) model.Element
}

// Pointer is one input sample.
type Pointer struct {
	Point geometry.Point
	// Modifier is the toggle key (ctrl) state.
	Modifier bool
}

type gesture int

const (
	idle gesture = iota
	pressed
	dragging
)

// Manager holds the ordered selection of one view.
type Manager struct {
	graph  *model.Graph
	hits   HitTester
	bus    *Bus
	policy Policy

	selected []model.Element

	state  gesture
	start  Pointer
	target model.Element

	tokens []pubsub.Token
}

// New creates a manager for g. hits may be nil, in which case every press
// lands on the background.
func New(g *model.Graph, hits HitTester) *Manager {
	m := &Manager{
		graph:  g,
		hits:   hits,
		bus:    pubsub.NewBus[EventKind, Event](),
		policy: DefaultPolicy(),
	}
	m.tokens = []pubsub.Token{
		g.Subscribe(model.Removed, func(_ any, e model.Event) { m.removed(e.Element) }),
		g.Subscribe(model.NewGraph, func(_ any, _ model.Event) { m.selected = nil }),
	}
	return m
}

// Close detaches the manager from its graph.
func (m *Manager) Close() {
	for _, t := range m.tokens {
		m.graph.Unsubscribe(t)
	}
	m.tokens = nil
}

// Bus returns the bus the manager publishes on.
func (m *Manager) Bus() *Bus { return m.bus }

// Subscribe registers h for events of kind from this manager.
func (m *Manager) Subscribe(kind EventKind, h pubsub.Handler[Event]) pubsub.Token {
	return m.bus.Subscribe(m, kind, h)
}

// SubscribeAll registers h for every event from this manager.
func (m *Manager) SubscribeAll(h pubsub.Handler[Event]) pubsub.Token {
	return m.bus.SubscribeAll(m, h)
}

// Unsubscribe removes a registration.
func (m *Manager) Unsubscribe(t pubsub.Token) { m.bus.Unsubscribe(t) }

func (m *Manager) publish(e Event) {
	m.bus.Publish(m, e.Kind, e)
}

// Policy returns the current policy.
func (m *Manager) Policy() Policy { return m.policy }

// SetPolicy replaces the policy. Selected elements of a kind that is no
// longer allowed are deselected.
func (m *Manager) SetPolicy(p Policy) {
	m.policy = p
	for _, el := range slices.Clone(m.selected) {
		if !p.allows(el) {
			m.Deselect(el)
		}
	}
	if !p.AllowMultiple {
		for len(m.selected) > 1 {
			m.Deselect(m.selected[len(m.selected)-1])
		}
	}
}

// Selection returns the selected elements in selection order.
func (m *Manager) Selection() []model.Element { return slices.Clone(m.selected) }

// Len returns the number of selected elements.
func (m *Manager) Len() int { return len(m.selected) }

// IsSelected reports whether el is selected.
func (m *Manager) IsSelected(el model.Element) bool {
	return slices.Contains(m.selected, el)
}

// Nodes returns the selected nodes in selection order.
func (m *Manager) Nodes() []*model.Node {
	var out []*model.Node
	for _, el := range m.selected {
		if n, ok := el.(*model.Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns the selected edges in selection order.
func (m *Manager) Edges() []*model.Edge {
	var out []*model.Edge
	for _, el := range m.selected {
		if e, ok := el.(*model.Edge); ok {
			out = append(out, e)
		}
	}
	return out
}

// FirstNode returns the earliest selected node, or nil.
func (m *Manager) FirstNode() *model.Node {
	if nodes := m.Nodes(); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// Select appends el to the selection. Already selected elements and kinds
// the policy forbids are ignored. Without multiple selection the previous
// selection is cleared first.
func (m *Manager) Select(el model.Element) {
	if el == nil || m.IsSelected(el) || !m.policy.allows(el) {
		return
	}
	if !m.graph.Contains(el) {
		logging.Debug("ignoring selection of detached element", "element", el.String())
		return
	}
	if !m.policy.AllowMultiple {
		m.DeselectAll()
	}
	m.selected = append(m.selected, el)
	m.publish(Event{Kind: Changed, Element: el, Selected: true})
}

// Deselect removes el from the selection if present.
func (m *Manager) Deselect(el model.Element) {
	m.deselect(el, true)
}

func (m *Manager) deselect(el model.Element, notify bool) {
	i := slices.Index(m.selected, el)
	if i < 0 {
		return
	}
	m.selected = slices.Delete(m.selected, i, i+1)
	if notify {
		m.publish(Event{Kind: Changed, Element: el, Selected: false})
	}
}

// DeselectAll empties the selection, most recently selected first, with one
// Changed event per element.
func (m *Manager) DeselectAll() {
	for len(m.selected) > 0 {
		last := m.selected[len(m.selected)-1]
		m.selected = m.selected[:len(m.selected)-1]
		m.publish(Event{Kind: Changed, Element: last, Selected: false})
	}
}

// removed keeps the selection consistent with the graph. A removed element
// is no longer selectable, so nothing is announced.
func (m *Manager) removed(el model.Element) {
	if n, ok := el.(*model.Node); ok {
		for _, e := range n.Edges() {
			m.deselect(e, false)
		}
	}
	m.deselect(el, false)
}

// Press starts a gesture.
func (m *Manager) Press(p Pointer) {
	m.state = pressed
	m.start = p
	m.target = nil
	if m.hits != nil {
		m.target = m.hits.HitTest(p.Point)
	}
}

// Move feeds pointer motion. It is ignored unless a gesture is in progress
// and dragging is allowed.
func (m *Manager) Move(p Pointer) {
	if m.state == idle || !m.policy.AllowDrag {
		return
	}
	d := r2.Sub(p.Point, m.start.Point)
	if m.state == pressed {
		if math.Abs(d.X) <= DragThreshold && math.Abs(d.Y) <= DragThreshold {
			return
		}
		m.state = dragging
		m.publish(m.gestureEvent(Pick, geometry.Point{}))
	}
	m.publish(m.gestureEvent(Drag, d))
}

// Release ends a gesture as either a click or a drop.
func (m *Manager) Release(p Pointer) {
	switch m.state {
	case pressed:
		m.click()
	case dragging:
		m.publish(m.gestureEvent(Drop, r2.Sub(p.Point, m.start.Point)))
	}
	m.state = idle
	m.target = nil
}

// Dragging reports whether a drag is in progress.
func (m *Manager) Dragging() bool { return m.state == dragging }

func (m *Manager) gestureEvent(kind EventKind, delta geometry.Point) Event {
	return Event{Kind: kind, Element: m.target, Point: m.start.Point, Delta: delta, Modifier: m.start.Modifier}
}

func (m *Manager) click() {
	if !m.policy.AllowNodes && !m.policy.AllowEdges {
		m.publish(m.gestureEvent(Click, geometry.Point{}))
		return
	}

	target := m.target
	if target != nil && !m.graph.Contains(target) {
		target = nil // removed between press and release
	}
	switch {
	case target == nil:
		m.DeselectAll()
	case !m.policy.allows(target):
		// the other kind is selectable; this click does nothing
	case m.IsSelected(target):
		if m.start.Modifier {
			m.Deselect(target)
		} else {
			m.DeselectAll()
			m.Select(target)
		}
	default:
		if !m.start.Modifier {
			m.DeselectAll()
		}
		m.Select(target)
	}
}
