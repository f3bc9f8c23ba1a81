package core

import (
	"time"

	"pkt.systems/promptdeck/schema"
)

// session tracks the state of a single chat session.
type session struct {
	ID           schema.SessionID
	Name         schema.SessionName
	Provider     schema.ProviderID
	Messages     []schema.Message
	Loading      bool
	Unread       bool
	Conflict     bool
	CreatedAt    time.Time
	LastActivity time.Time
	history      *historyRing
}

// Snapshot returns a transport-friendly view of the session. Message history
// is attached only when withMessages is set; list views stay cheap.
func (s *session) Snapshot(active bool, queued int, withMessages bool) schema.SessionSnapshot {
	snap := schema.SessionSnapshot{
		ID:           s.ID,
		Name:         s.Name,
		Provider:     s.Provider,
		Loading:      s.Loading,
		Unread:       s.Unread,
		Conflict:     s.Conflict,
		Active:       active,
		QueuedCount:  queued,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
	if withMessages {
		snap.Messages = append([]schema.Message(nil), s.Messages...)
	}
	return snap
}

func (s *session) append(msg schema.Message) {
	s.Messages = append(s.Messages, msg)
	s.LastActivity = msg.Timestamp
}
