package core

import (
	"context"

	"pkt.systems/promptdeck/schema"
)

// Service is the transport-agnostic API for managing sessions, queueing
// prompts, and observing conflicts and queue statistics.
type Service interface {
	CreateSession(ctx context.Context, req schema.CreateSessionRequest) (schema.CreateSessionResponse, error)
	CloseSession(ctx context.Context, req schema.CloseSessionRequest) (schema.CloseSessionResponse, error)
	RenameSession(ctx context.Context, req schema.RenameSessionRequest) (schema.RenameSessionResponse, error)
	ActivateSession(ctx context.Context, req schema.ActivateSessionRequest) (schema.ActivateSessionResponse, error)
	ListSessions(ctx context.Context, req schema.ListSessionsRequest) (schema.ListSessionsResponse, error)
	SendPrompt(ctx context.Context, req schema.SendPromptRequest) (schema.SendPromptResponse, error)
	CancelQueued(ctx context.Context, req schema.CancelQueuedRequest) (schema.CancelQueuedResponse, error)
	AcknowledgeConflict(ctx context.Context, req schema.AcknowledgeConflictRequest) (schema.AcknowledgeConflictResponse, error)
	ListConflicts(ctx context.Context, req schema.ListConflictsRequest) (schema.ListConflictsResponse, error)
	QueueStats(ctx context.Context, req schema.QueueStatsRequest) (schema.QueueStatsResponse, error)
	GetHistory(ctx context.Context, req schema.GetHistoryRequest) (schema.GetHistoryResponse, error)
}
