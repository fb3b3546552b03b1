package pubsub

import (
	"sync"
	"sync/atomic"

	"github.com/ritzau/dotedit/pkg/logging"
)

// AnySource is the wildcard source filter: handlers registered with it see
// events from every publisher on the bus.
var AnySource any

// Handler receives an event together with the object that published it.
type Handler[E any] func(source any, event E)

// Token identifies one registration and is used to unsubscribe it.
type Token uint64

// Bus is a synchronous, in-process publish/subscribe hub keyed by
// (source, kind). Handlers run on the publishing goroutine in registration
// order. Sources must be comparable values, in practice pointers.
type Bus[K comparable, E any] struct {
	mu       sync.Mutex
	next     Token
	bindings []*binding[K, E]
}

type binding[K comparable, E any] struct {
	token   Token
	source  any
	kind    K
	anyKind bool
	handler Handler[E]
	dead    atomic.Bool
}

func (b *binding[K, E]) matches(source any, kind K) bool {
	if b.source != nil && b.source != source {
		return false
	}
	return b.anyKind || b.kind == kind
}

// NewBus creates an empty bus.
func NewBus[K comparable, E any]() *Bus[K, E] {
	return &Bus[K, E]{}
}

// Subscribe registers h for events of the given kind published by source.
// Pass AnySource to receive the kind from every publisher.
func (b *Bus[K, E]) Subscribe(source any, kind K, h Handler[E]) Token {
	return b.add(&binding[K, E]{source: source, kind: kind, handler: h})
}

// SubscribeAll registers h for every kind published by source.
func (b *Bus[K, E]) SubscribeAll(source any, h Handler[E]) Token {
	return b.add(&binding[K, E]{source: source, anyKind: true, handler: h})
}

func (b *Bus[K, E]) add(bnd *binding[K, E]) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	bnd.token = b.next
	b.bindings = append(b.bindings, bnd)
	return bnd.token
}

// Unsubscribe removes a registration. A handler removed while a publish is in
// progress is not called for the rest of that publish.
func (b *Bus[K, E]) Unsubscribe(t Token) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, bnd := range b.bindings {
		if bnd.token == t {
			bnd.dead.Store(true)
			b.bindings = append(b.bindings[:i:i], b.bindings[i+1:]...)
			return
		}
	}
	logging.Debug("unsubscribe of unknown token", "token", t)
}

// Publish delivers event to every matching handler.
//
// The handler list is snapshotted before dispatch, so handlers may publish,
// subscribe or unsubscribe re-entrantly. Handlers added during a publish are
// first called on the next one.
func (b *Bus[K, E]) Publish(source any, kind K, event E) {
	b.mu.Lock()
	snapshot := make([]*binding[K, E], 0, len(b.bindings))
	for _, bnd := range b.bindings {
		if bnd.matches(source, kind) {
			snapshot = append(snapshot, bnd)
		}
	}
	b.mu.Unlock()

	for _, bnd := range snapshot {
		if bnd.dead.Load() {
			continue
		}
		bnd.handler(source, event)
	}
}

// Len returns the number of live registrations.
func (b *Bus[K, E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bindings)
}
