package eventbus

import (
	"testing"
	"time"

	"pkt.systems/promptdeck/schema"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	event := schema.MessageEvent{
		SessionID: "s1",
		Message:   schema.Message{Role: schema.RoleAssistant, Content: "hi"},
	}
	bus.OnMessageEvent(event)

	select {
	case got := <-ch:
		if got.Type != EventMessage {
			t.Fatalf("expected message event, got %v", got.Type)
		}
		if got.Message.SessionID != event.SessionID || got.Message.Message.Content != "hi" {
			t.Fatalf("unexpected payload: %+v", got.Message)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	// Publishing after cancel must not panic or block.
	bus.OnQueueEvent(schema.QueueEvent{})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := New(nil)
	bus.depth = 1
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.OnQueueEvent(schema.QueueEvent{Stats: schema.QueueStats{TotalQueued: 1}})
	done := make(chan struct{})
	go func() {
		bus.OnQueueEvent(schema.QueueEvent{Stats: schema.QueueStats{TotalQueued: 2}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a full subscriber")
	}
	got := <-ch
	if got.Queue.Stats.TotalQueued != 1 {
		t.Fatalf("expected first event retained, got %+v", got.Queue.Stats)
	}
}
