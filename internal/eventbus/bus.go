package eventbus

import (
	"context"
	"sync"

	"pkt.systems/promptdeck/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventSession carries session lifecycle and status updates.
	EventSession EventType = "session"
	// EventMessage carries a message appended to a session.
	EventMessage EventType = "message"
	// EventQueue carries queue statistics updates.
	EventQueue EventType = "queue"
	// EventConflict carries a detected file conflict.
	EventConflict EventType = "conflict"
)

// Event represents a UI-facing event emitted by the core service.
type Event struct {
	Type     EventType
	Session  schema.SessionEvent
	Message  schema.MessageEvent
	Queue    schema.QueueEvent
	Conflict schema.ConflictEvent
}

// Bus fanouts core events to subscribers. Slow subscribers drop events
// rather than stall the service.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
		if b.log != nil {
			b.log.Debug("eventbus unsubscribe")
		}
	}
}

// OnSessionEvent publishes a session event.
func (b *Bus) OnSessionEvent(event schema.SessionEvent) {
	b.publish(Event{Type: EventSession, Session: event})
}

// OnMessageEvent publishes a message event.
func (b *Bus) OnMessageEvent(event schema.MessageEvent) {
	b.publish(Event{Type: EventMessage, Message: event})
}

// OnQueueEvent publishes a queue stats event.
func (b *Bus) OnQueueEvent(event schema.QueueEvent) {
	b.publish(Event{Type: EventQueue, Queue: event})
}

// OnConflictEvent publishes a conflict event.
func (b *Bus) OnConflictEvent(event schema.ConflictEvent) {
	b.publish(Event{Type: EventConflict, Conflict: event})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan Event, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}
