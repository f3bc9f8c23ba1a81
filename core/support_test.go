package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"pkt.systems/promptdeck/schema"
)

// stubAdapter answers every prompt through a single reply function.
type stubAdapter struct {
	reply func(req SendRequest) (SendResult, error)
}

func (a stubAdapter) Send(_ context.Context, req SendRequest) (SendResult, error) {
	return a.reply(req)
}

// gateAdapter parks every Send until the test releases it, surfacing each
// request on calls in arrival order.
type gateAdapter struct {
	calls   chan SendRequest
	release chan SendResult
}

func newGateAdapter() *gateAdapter {
	return &gateAdapter{
		calls:   make(chan SendRequest, 16),
		release: make(chan SendResult, 16),
	}
}

func (a *gateAdapter) Send(_ context.Context, req SendRequest) (SendResult, error) {
	a.calls <- req
	res := <-a.release
	return res, nil
}

func (a *gateAdapter) awaitCall(t *testing.T) SendRequest {
	t.Helper()
	select {
	case req := <-a.calls:
		return req
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for adapter call")
		return SendRequest{}
	}
}

// recordSink collects emitted events behind a mutex.
type recordSink struct {
	mu        sync.Mutex
	sessions  []schema.SessionEvent
	messages  []schema.MessageEvent
	queues    []schema.QueueEvent
	conflicts []schema.ConflictEvent
}

func (s *recordSink) OnSessionEvent(event schema.SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, event)
}

func (s *recordSink) OnMessageEvent(event schema.MessageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, event)
}

func (s *recordSink) OnQueueEvent(event schema.QueueEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues = append(s.queues, event)
}

func (s *recordSink) OnConflictEvent(event schema.ConflictEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = append(s.conflicts, event)
}

func (s *recordSink) conflictCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conflicts)
}

func newTestService(t *testing.T, cfg schema.ServiceConfig, adapter Adapter, sink EventSink) Service {
	t.Helper()
	svc, err := NewService(cfg, ServiceDeps{
		Adapters:  StaticAdapterProvider{Adapter: adapter},
		EventSink: sink,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func createSession(t *testing.T, svc Service, name string) schema.SessionSnapshot {
	t.Helper()
	resp, err := svc.CreateSession(context.Background(), schema.CreateSessionRequest{
		Name:     schema.SessionName(name),
		Provider: "stub",
	})
	if err != nil {
		t.Fatalf("create session %q: %v", name, err)
	}
	return resp.Session
}

func findSession(t *testing.T, svc Service, id schema.SessionID, withMessages bool) schema.SessionSnapshot {
	t.Helper()
	resp, err := svc.ListSessions(context.Background(), schema.ListSessionsRequest{IncludeMessages: withMessages})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	for _, snap := range resp.Sessions {
		if snap.ID == id {
			return snap
		}
	}
	t.Fatalf("session %q not in listing", id)
	return schema.SessionSnapshot{}
}

// waitUntil polls cond until it holds or the deadline lapses. Dispatch runs
// on goroutines, so settles land asynchronously.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
}

func queueStats(t *testing.T, svc Service) schema.QueueStats {
	t.Helper()
	resp, err := svc.QueueStats(context.Background(), schema.QueueStatsRequest{})
	if err != nil {
		t.Fatalf("queue stats: %v", err)
	}
	return resp.Stats
}
