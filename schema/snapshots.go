package schema

import "time"

// SessionSnapshot is a read-only view of session state for transports and UIs.
type SessionSnapshot struct {
	ID           SessionID   `json:"id"`
	Name         SessionName `json:"name"`
	Provider     ProviderID  `json:"provider"`
	Messages     []Message   `json:"messages,omitempty"`
	Loading      bool        `json:"loading"`
	Unread       bool        `json:"unread"`
	Conflict     bool        `json:"conflict"`
	Active       bool        `json:"active"`
	QueuedCount  int         `json:"queued_count"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
}

// Conflict records overlapping file access by two or more sessions within the
// detection window.
type Conflict struct {
	Path       string      `json:"path"`
	Sessions   []SessionID `json:"sessions"`
	DetectedAt time.Time   `json:"detected_at"`
}

// QueueStats aggregates queue and timing counters for status displays.
// Day-bucketed counters reset at the local day boundary.
type QueueStats struct {
	TotalQueued      int     `json:"total_queued"`
	Processing       int     `json:"processing"`
	CompletedToday   int     `json:"completed_today"`
	FailedToday      int     `json:"failed_today"`
	AverageWaitMs    float64 `json:"average_wait_ms"`
	AverageProcessMs float64 `json:"average_process_ms"`
}
