package core

import "pkt.systems/promptdeck/schema"

// EventSink receives session, message, queue, and conflict events from the
// core service. Implementations must not call back into the service.
type EventSink interface {
	OnSessionEvent(event schema.SessionEvent)
	OnMessageEvent(event schema.MessageEvent)
	OnQueueEvent(event schema.QueueEvent)
	OnConflictEvent(event schema.ConflictEvent)
}
