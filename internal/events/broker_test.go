package events

import (
	"testing"
	"time"
)

func TestMemoryPublishSubscribe(t *testing.T) {
	b := NewMemory()
	ch := b.Subscribe(Topic)

	evt := Event{Type: "schedule.success", Data: map[string]any{"historyLength": 1}}
	b.Publish(Topic, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["historyLength"].(int) != 1 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(Topic, ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	// second unsubscribe must not panic on double close
	b.Unsubscribe(Topic, ch)
}

func TestMemoryDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewMemory()
	ch := b.Subscribe(Topic)
	defer b.Unsubscribe(Topic, ch)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Topic, Event{Type: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected buffer to be full, got %d/%d", len(ch), cap(ch))
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	NewMemory().Publish("nobody", Event{Type: "x"})
}
