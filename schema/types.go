package schema

import "time"

// SessionID identifies a chat session ("tab").
type SessionID string

// SessionName is the user-facing name of a session.
type SessionName string

// ProviderID identifies a backend provider.
type ProviderID string

// MessageID identifies a message within a session.
type MessageID string

// EntryID identifies a queued prompt.
type EntryID string

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a provider response.
	RoleAssistant Role = "assistant"
	// RoleSystem marks core-generated messages such as provider errors.
	RoleSystem Role = "system"
)

// Message is one entry in a session's ordered history. Immutable once appended.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
