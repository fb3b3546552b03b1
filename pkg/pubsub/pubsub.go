package pubsub

import (
	"context"
	"encoding/json"
)

// Topics streamed to web clients.
const (
	TopicGraph     = "graph"     // model mutations
	TopicSelection = "selection" // selection changes and drag progress
)

// Event is one message delivered to a remote subscriber
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "graph", "selection")
	Type    string          `json:"type"`    // Event type (e.g., "created", "moved", "newgraph")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher fans events out to remote subscribers. Unlike Bus it is
// asynchronous: events are queued per subscription and may be dropped when a
// client falls behind.
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// ElementRef names a graph element in a remote event.
type ElementRef struct {
	Kind string `json:"kind"`           // "node" or "edge"
	Name string `json:"name,omitempty"` // node name
	ID   int    `json:"id,omitempty"`   // edge id
}

// SelectionData is the payload of selection topic events.
type SelectionData struct {
	Element  *ElementRef  `json:"element,omitempty"`
	Selected bool         `json:"selected"`
	Members  []ElementRef `json:"members"`
}

// GraphData is the payload of graph topic events.
type GraphData struct {
	Element  *ElementRef `json:"element,omitempty"`
	Position *[2]float64 `json:"position,omitempty"` // moved nodes only
	Nodes    int         `json:"nodes"`
	Edges    int         `json:"edges"`
}
