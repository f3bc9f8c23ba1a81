package schema

// SessionEventType classifies session lifecycle events.
type SessionEventType string

const (
	// SessionEventCreated indicates a session was created.
	SessionEventCreated SessionEventType = "created"
	// SessionEventClosed indicates a session was closed.
	SessionEventClosed SessionEventType = "closed"
	// SessionEventRenamed indicates a session changed its display name.
	SessionEventRenamed SessionEventType = "renamed"
	// SessionEventActivated indicates the foreground session changed.
	SessionEventActivated SessionEventType = "activated"
	// SessionEventStatus indicates loading/unread/conflict flags changed.
	SessionEventStatus SessionEventType = "status"
)

// SessionEvent notifies observers of a session mutation.
type SessionEvent struct {
	Type          SessionEventType
	Session       SessionSnapshot
	ActiveSession SessionID
}

// MessageEvent notifies observers of a message appended to a session.
type MessageEvent struct {
	SessionID SessionID
	Message   Message
}

// QueueEvent carries a fresh stats snapshot after queue or timing changes.
type QueueEvent struct {
	Stats QueueStats
}

// ConflictEvent notifies observers of a newly detected conflict.
type ConflictEvent struct {
	Conflict Conflict
}
