package promptdeck

import (
	"pkt.systems/promptdeck/core"
	"pkt.systems/promptdeck/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnSessionEvent(event schema.SessionEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSessionEvent(event)
	}
}

func (f eventFanout) OnMessageEvent(event schema.MessageEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnMessageEvent(event)
	}
}

func (f eventFanout) OnQueueEvent(event schema.QueueEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnQueueEvent(event)
	}
}

func (f eventFanout) OnConflictEvent(event schema.ConflictEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnConflictEvent(event)
	}
}
