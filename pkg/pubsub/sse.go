package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/ritzau/dotedit/pkg/logging"
)

// TopicConfig configures replay for clients that join late
type TopicConfig struct {
	BufferSize int  // Number of events to keep (0 = no replay)
	ReplayAll  bool // Replay the whole buffer instead of only the last event
}

// queueSize bounds the per-client backlog before events are dropped.
const queueSize = 128

// SSEPublisher implements Publisher for Server-Sent Events streams
type SSEPublisher struct {
	mu          sync.RWMutex
	subscribers map[string]map[*sseSubscription]struct{}
	version     map[string]int
	buffer      map[string][]Event
	config      map[string]TopicConfig
	closed      bool
}

// NewSSEPublisher creates a publisher with no topics configured
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		subscribers: make(map[string]map[*sseSubscription]struct{}),
		version:     make(map[string]int),
		buffer:      make(map[string][]Event),
		config:      make(map[string]TopicConfig),
	}
}

// ConfigureTopic sets the replay buffer for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config[topic] = config
}

// Subscribe registers a client for a topic and replays buffered events to it
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("publisher is closed")
	}

	sub := &sseSubscription{
		id:        uuid.NewString(),
		topic:     topic,
		events:    make(chan Event, queueSize),
		publisher: p,
	}
	if p.subscribers[topic] == nil {
		p.subscribers[topic] = make(map[*sseSubscription]struct{})
	}
	p.subscribers[topic][sub] = struct{}{}

	// replay under the lock so a concurrent Close cannot close the channel
	// between the copy and the sends
	replay := p.buffer[topic]
	if len(replay) > 0 && !p.config[topic].ReplayAll {
		replay = replay[len(replay)-1:]
	}
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			logging.Warn("could not replay event", "topic", topic, "client", sub.id)
		}
	}
	p.mu.Unlock()

	logging.Debug("client subscribed", "topic", topic, "client", sub.id, "replayed", len(replay))

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish marshals data and queues it for every subscriber of topic
func (p *SSEPublisher) Publish(topic string, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.version[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    payload,
		Version: p.version[topic],
	}

	if size := p.config[topic].BufferSize; size > 0 {
		buf := append(p.buffer[topic], event)
		if len(buf) > size {
			buf = buf[len(buf)-size:]
		}
		p.buffer[topic] = buf
	}

	for sub := range p.subscribers[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("client queue full, dropping event", "topic", topic, "client", sub.id, "type", eventType)
		}
	}

	return nil
}

// Close shuts down the publisher and all subscriptions
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, subs := range p.subscribers {
		for sub := range subs {
			sub.closed = true
			close(sub.events)
		}
	}
	p.subscribers = make(map[string]map[*sseSubscription]struct{})

	return nil
}

// Subscribers returns the number of clients listening on topic.
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers[topic])
}

// unsubscribe removes sub and closes its channel. It reports false when sub
// was already closed.
func (p *SSEPublisher) unsubscribe(sub *sseSubscription) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sub.closed {
		return false
	}
	sub.closed = true
	if subs := p.subscribers[sub.topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(p.subscribers, sub.topic)
		}
	}
	close(sub.events)
	return true
}

type sseSubscription struct {
	id        string
	topic     string
	events    chan Event
	publisher *SSEPublisher
	closed    bool // guarded by publisher.mu
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

func (s *sseSubscription) Close() error {
	if s.publisher.unsubscribe(s) {
		logging.Debug("client unsubscribed", "topic", s.topic, "client", s.id)
	}
	return nil
}

// WriteSSE writes an event in SSE framing: "event: <type>\ndata: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
