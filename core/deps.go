package core

import (
	"pkt.systems/promptdeck/internal/persist"
	"pkt.systems/pslog"
)

// ServiceDeps captures optional dependencies for the core service.
type ServiceDeps struct {
	Adapters    AdapterProvider
	EventSink   EventSink
	Transcripts *persist.Store
	Logger      pslog.Logger
}
