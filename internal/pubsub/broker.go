// Package pubsub provides a minimal generic broker for in-process lifecycle
// events.
package pubsub

import (
	"context"
	"sync"
)

// EventType categorizes a published event.
type EventType string

// Standard event types.
const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event wraps a payload with its event type.
type Event[T any] struct {
	Type    EventType
	Payload T
}

const subscriberBuffer = 64

// Broker fans published events out to subscribers. Publishing never blocks;
// events for slow subscribers are dropped.
type Broker[T any] struct {
	mu   sync.Mutex
	subs map[chan Event[T]]struct{}
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{})}
}

// Subscribe returns a channel of events. The subscription ends and the
// channel closes when ctx is done.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	ch := make(chan Event[T], subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish sends the event to all current subscribers without blocking.
func (b *Broker[T]) Publish(t EventType, payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- Event[T]{Type: t, Payload: payload}:
		default:
		}
	}
}
