package schema

// CreateSessionRequest creates a new chat session.
type CreateSessionRequest struct {
	Name     SessionName
	Provider ProviderID
}

// CreateSessionResponse returns the created session.
type CreateSessionResponse struct {
	Session SessionSnapshot
}

// CloseSessionRequest closes a session; its queued entries are discarded.
type CloseSessionRequest struct {
	SessionID SessionID
}

// CloseSessionResponse returns the final snapshot of the closed session.
type CloseSessionResponse struct {
	Session SessionSnapshot
}

// RenameSessionRequest updates a session's display name.
type RenameSessionRequest struct {
	SessionID SessionID
	Name      SessionName
}

// RenameSessionResponse returns the renamed session.
type RenameSessionResponse struct {
	Session SessionSnapshot
}

// ActivateSessionRequest selects the foreground session.
type ActivateSessionRequest struct {
	SessionID SessionID
}

// ActivateSessionResponse returns the activated session.
type ActivateSessionResponse struct {
	Session SessionSnapshot
}

// ListSessionsRequest lists all sessions in creation order.
type ListSessionsRequest struct {
	// IncludeMessages attaches full message history to each snapshot.
	IncludeMessages bool
}

// ListSessionsResponse returns session snapshots plus the active id.
type ListSessionsResponse struct {
	Sessions      []SessionSnapshot
	ActiveSession SessionID
}

// SendPromptRequest queues a prompt for a session.
type SendPromptRequest struct {
	SessionID SessionID
	Prompt    string
	// Files optionally names resources the request is expected to touch;
	// they are reported to conflict detection alongside paths the adapter
	// returns.
	Files []string
}

// SendPromptResponse acknowledges the queued entry.
type SendPromptResponse struct {
	EntryID EntryID
	Session SessionSnapshot
}

// CancelQueuedRequest removes a not-yet-admitted entry from its queue.
type CancelQueuedRequest struct {
	EntryID EntryID
}

// CancelQueuedResponse reports whether the entry was removed.
type CancelQueuedResponse struct {
	Cancelled bool
}

// AcknowledgeConflictRequest clears a session's conflict flag.
type AcknowledgeConflictRequest struct {
	SessionID SessionID
}

// AcknowledgeConflictResponse returns the updated session.
type AcknowledgeConflictResponse struct {
	Session SessionSnapshot
}

// ListConflictsRequest lists open conflict records.
type ListConflictsRequest struct{}

// ListConflictsResponse returns open conflicts, newest last.
type ListConflictsResponse struct {
	Conflicts []Conflict
}

// QueueStatsRequest fetches the current stats snapshot.
type QueueStatsRequest struct{}

// QueueStatsResponse returns the stats snapshot.
type QueueStatsResponse struct {
	Stats QueueStats
}

// GetHistoryRequest fetches the prompt recall ring for a session.
type GetHistoryRequest struct {
	SessionID SessionID
}

// GetHistoryResponse returns recall entries, oldest first.
type GetHistoryResponse struct {
	Entries []string
}
