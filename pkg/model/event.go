package model

import "github.com/ritzau/dotedit/pkg/pubsub"

// EventKind enumerates the notifications a Graph publishes.
type EventKind int

const (
	Created  EventKind = iota + 1 // node or edge added
	Removed                       // node or edge removed
	Changed                       // label, stencil or data changed
	Moved                         // node position changed
	NewGraph                      // graph cleared or replaced wholesale
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	case Moved:
		return "moved"
	case NewGraph:
		return "newgraph"
	}
	return "unknown"
}

// Event is the payload of a graph notification. Element is nil for NewGraph
// and a *Node for Moved.
type Event struct {
	Kind    EventKind
	Element Element
}

// Node returns the event's element as a node, or nil.
func (e Event) Node() *Node {
	n, _ := e.Element.(*Node)
	return n
}

// Edge returns the event's element as an edge, or nil.
func (e Event) Edge() *Edge {
	ed, _ := e.Element.(*Edge)
	return ed
}

// Bus carries graph events. Graphs publish with themselves as the source.
type Bus = pubsub.Bus[EventKind, Event]

// NewBus creates a graph event bus.
func NewBus() *Bus {
	return pubsub.NewBus[EventKind, Event]()
}
