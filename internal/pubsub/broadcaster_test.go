package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/library-backend/internal/model"
)

func TestSubscribe_ReceivesPublishedEvents(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx, TopicBookAdded)
	b.Publish(TopicBookAdded, model.Book{Title: "Clean Code"})

	select {
	case book := <-ch:
		assert.Equal(t, "Clean Code", book.Title)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}
}

func TestSubscribe_PerSubscriberOrdering(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx, TopicBookAdded)
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		b.Publish(TopicBookAdded, model.Book{Title: title})
	}

	// Events arrive in publication order on a single subscriber's channel.
	for _, want := range titles {
		select {
		case book := <-ch:
			assert.Equal(t, want, book.Title)
		case <-time.After(time.Second):
			t.Fatalf("did not receive %q", want)
		}
	}
}

func TestSubscribe_LateSubscriberMissesEarlierEvents(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.Publish(TopicBookAdded, model.Book{Title: "before anyone listened"})

	ch := b.Subscribe(ctx, TopicBookAdded)
	select {
	case book, ok := <-ch:
		if ok {
			t.Fatalf("late subscriber received %q — no replay expected", book.Title)
		}
	default:
		// nothing buffered, as it should be
	}
}

func TestSubscribe_ContextCancelDeregisters(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.Subscribe(ctx, TopicBookAdded)
	require.Equal(t, 1, b.SubscriberCount(TopicBookAdded))

	cancel()

	// Deregistration closes the channel; wait for it rather than sleeping.
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed, not delivering")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after context cancellation")
	}
	assert.Equal(t, 0, b.SubscriberCount(TopicBookAdded))
}

func TestPublish_NoSubscribersDoesNotBlock(t *testing.T) {
	b := New()

	done := make(chan struct{})
	go func() {
		b.Publish(TopicBookAdded, model.Book{Title: "into the void"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestPublish_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx, TopicBookAdded)

	// Overfill the subscriber's buffer without draining it.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(TopicBookAdded, model.Book{Published: i})
	}

	// The publisher never blocked (we got here), and the subscriber still
	// sees the buffered prefix in order.
	first := <-ch
	assert.Equal(t, 0, first.Published)
	assert.Equal(t, 1, b.SubscriberCount(TopicBookAdded))
}

func TestSubscribe_IndependentTopics(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	books := b.Subscribe(ctx, TopicBookAdded)
	other := b.Subscribe(ctx, "SOMETHING_ELSE")

	b.Publish(TopicBookAdded, model.Book{Title: "Refactoring"})

	select {
	case book := <-books:
		assert.Equal(t, "Refactoring", book.Title)
	case <-time.After(time.Second):
		t.Fatal("topic subscriber did not receive the event")
	}

	select {
	case book := <-other:
		t.Fatalf("unrelated topic received %q", book.Title)
	default:
	}
}
