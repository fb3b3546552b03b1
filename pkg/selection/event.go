package selection

import (
	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
)

// EventKind enumerates what a Manager publishes.
type EventKind int

const (
	Changed EventKind = iota + 1 // an element was selected or deselected
	Click                        // a click while selection is disabled
	Pick                         // a drag started
	Drag                         // the pointer moved during a drag
	Drop                         // a drag ended
)

func (k EventKind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Click:
		return "click"
	case Pick:
		return "pick"
	case Drag:
		return "drag"
	case Drop:
		return "drop"
	}
	return "unknown"
}

// Event is published with the Manager as source.
type Event struct {
	Kind EventKind
	// Element is the element affected, or the one under the pointer when
	// the gesture started. Nil means the background.
	Element model.Element
	// Selected is the new state of Element for Changed events.
	Selected bool
	// Point is where the gesture started.
	Point geometry.Point
	// Delta is the pointer offset from Point for Drag and Drop.
	Delta    geometry.Point
	Modifier bool
}

// Bus carries selection events.
type Bus = pubsub.Bus[EventKind, Event]
