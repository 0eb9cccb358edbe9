// Package pubsub provides an in-process publish/subscribe broadcaster used
// to fan book-creation events out to active GraphQL subscriptions.
//
// This is deliberately NOT a message broker: delivery is in-memory and
// best-effort, there is no persistence, no replay, and events do not survive
// a restart. A subscriber that connects after an event was published never
// sees it. Within one subscriber, events arrive in publication order (each
// subscriber has its own FIFO channel); across subscribers there is no
// ordering guarantee.
//
// The broadcaster is an explicit value owned by the server and injected into
// whatever needs it — there is no package-level global, so tests can run
// isolated instances side by side.
package pubsub

import (
	"context"
	"sync"

	"github.com/rs/xid"

	"github.com/sakif/library-backend/internal/model"
)

// TopicBookAdded is the topic addBook publishes to.
const TopicBookAdded = "BOOK_ADDED"

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts losing events rather than blocking the
// publisher — best-effort delivery, by contract.
const subscriberBuffer = 16

// Broadcaster fans published events out to all current subscribers of a
// topic. The zero value is not usable; call New.
type Broadcaster struct {
	mu sync.RWMutex
	// topic → subscriber id → delivery channel
	subs map[string]map[string]chan model.Book
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[string]chan model.Book),
	}
}

// Subscribe registers a new subscriber on the topic and returns its delivery
// channel. The subscription lives until ctx is cancelled — for a GraphQL
// subscription that is the lifetime of the websocket connection, so closing
// the connection deregisters the subscriber automatically.
//
// The returned channel is closed on deregistration, which lets consumers
// range over it.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) <-chan model.Book {
	ch := make(chan model.Book, subscriberBuffer)
	id := xid.New().String()

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]chan model.Book)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(topic, id)
	}()

	return ch
}

// Publish delivers the event to every current subscriber of the topic.
// Sends are non-blocking: a subscriber whose buffer is full misses this
// event instead of stalling the publisher (and with it, the mutation that
// triggered the publish).
func (b *Broadcaster) Publish(topic string, book model.Book) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- book:
		default:
			// subscriber too slow, drop
		}
	}
}

// SubscriberCount reports how many subscribers a topic currently has.
// Used by tests and the health endpoint.
func (b *Broadcaster) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Broadcaster) unsubscribe(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[topic][id]; ok {
		delete(b.subs[topic], id)
		close(ch)
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}
