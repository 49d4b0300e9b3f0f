package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	broker := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	broker.Publish(SearchStarted, "alice")

	select {
	case evt := <-ch:
		if evt.Type != SearchStarted {
			t.Errorf("expected event type SearchStarted, got %s", evt.Type)
		}
		if evt.Payload != "alice" {
			t.Errorf("expected payload 'alice', got %q", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMultipleSubscribers(t *testing.T) {
	broker := NewBroker[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)

	broker.Publish(KnowledgeUpdated, 42)

	for _, ch := range []<-chan Event[int]{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Payload != 42 {
				t.Errorf("expected payload 42, got %d", evt.Payload)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestContextCancellation(t *testing.T) {
	broker := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())

	ch := broker.Subscribe(ctx)
	cancel()

	// Wait for cleanup goroutine to run
	time.Sleep(50 * time.Millisecond)

	// Channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Verify subscriber was removed
	broker.mu.RLock()
	count := len(broker.subs)
	broker.mu.RUnlock()

	if count != 0 {
		t.Errorf("expected 0 subscribers after cancel, got %d", count)
	}
}

func TestSlowSubscriberDrop(t *testing.T) {
	broker := NewBroker[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	// Overfill the buffer
	for i := 0; i < subscriberBufferSize+10; i++ {
		broker.Publish(CountdownTick, i)
	}

	// Should be able to read exactly subscriberBufferSize events
	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			goto done
		}
	}
done:
	if count != subscriberBufferSize {
		t.Errorf("expected %d events (buffer size), got %d", subscriberBufferSize, count)
	}
}

func TestEventTypes(t *testing.T) {
	broker := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	broker.Publish(SearchStarted, "a")
	broker.Publish(KnowledgeUpdated, "b")
	broker.Publish(RateLimited, "c")
	broker.Publish(CountdownTick, "d")

	expected := []struct {
		typ     EventType
		payload string
	}{
		{SearchStarted, "a"},
		{KnowledgeUpdated, "b"},
		{RateLimited, "c"},
		{CountdownTick, "d"},
	}

	for _, exp := range expected {
		select {
		case evt := <-ch:
			if evt.Type != exp.typ {
				t.Errorf("expected type %s, got %s", exp.typ, evt.Type)
			}
			if evt.Payload != exp.payload {
				t.Errorf("expected payload %q, got %q", exp.payload, evt.Payload)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out")
		}
	}
}

// TestCancelDuringActivePublish checks that cancelling a subscriber's
// context while a publish is actively iterating the subscriber map does
// not cause races or deadlocks.
func TestCancelDuringActivePublish(t *testing.T) {
	broker := NewBroker[int]()

	const iterations = 500

	for i := 0; i < iterations; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		broker.Subscribe(ctx)

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			broker.Publish(CountdownTick, i)
		}()

		go func() {
			defer wg.Done()
			cancel()
		}()

		wg.Wait()
	}

	// Let cleanup goroutines finish.
	time.Sleep(200 * time.Millisecond)

	broker.mu.RLock()
	remaining := len(broker.subs)
	broker.mu.RUnlock()

	if remaining != 0 {
		t.Errorf("expected 0 remaining subscribers after all cancels, got %d", remaining)
	}
}
