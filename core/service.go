package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pkt.systems/promptdeck/internal/logx"
	"pkt.systems/promptdeck/internal/persist"
	"pkt.systems/promptdeck/schema"
	"pkt.systems/pslog"
)

// service implements the core orchestration behavior. All bookkeeping
// (registry, queue, admission, stats, conflicts) is serialized through one
// mutex; only adapter calls run outside it.
type service struct {
	cfg      schema.ServiceConfig
	adapters AdapterProvider
	sink     EventSink
	store    *persist.Store
	logger   pslog.Logger

	mu        sync.Mutex
	sessions  map[schema.SessionID]*session
	order     []schema.SessionID
	active    schema.SessionID
	queue     *promptQueue
	conflicts *conflictDetector
	stats     *statsAggregator
	now       func() time.Time
}

// NewService constructs the core service implementation.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	clock := time.Now
	return &service{
		cfg:       cfg,
		adapters:  deps.Adapters,
		sink:      deps.EventSink,
		store:     deps.Transcripts,
		logger:    logger,
		sessions:  make(map[schema.SessionID]*session),
		queue:     newPromptQueue(cfg.MaxConcurrent),
		conflicts: newConflictDetector(cfg.ConflictWindow),
		stats:     newStatsAggregator(clock()),
		now:       clock,
	}, nil
}

func (s *service) CreateSession(ctx context.Context, req schema.CreateSessionRequest) (schema.CreateSessionResponse, error) {
	if ctx == nil {
		return schema.CreateSessionResponse{}, errors.New("missing context")
	}
	if s.adapters == nil {
		return schema.CreateSessionResponse{}, schema.ErrAdapterUnavailable
	}
	provider := req.Provider
	if strings.TrimSpace(string(provider)) == "" {
		provider = s.cfg.DefaultProvider
	}
	log := logx.WithProvider(logx.Ctx(ctx), provider)
	if _, err := s.adapters.AdapterFor(ctx, provider); err != nil {
		log.Warn("service session create failed", "err", err)
		return schema.CreateSessionResponse{}, err
	}
	name := req.Name
	if strings.TrimSpace(string(name)) == "" {
		name = schema.SessionName(provider)
	}
	name = schema.SessionName(formatSessionName(string(name), s.cfg.SessionNameMax, s.cfg.SessionNameSuffix))

	now := s.now()
	sess := &session{
		ID:           schema.SessionID(newID()),
		Name:         name,
		Provider:     provider,
		CreatedAt:    now,
		LastActivity: now,
		history:      newHistoryRing(s.cfg.HistoryMaxEntries),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	if s.active == "" {
		s.active = sess.ID
	}
	event := schema.SessionEvent{
		Type:          schema.SessionEventCreated,
		Session:       sess.Snapshot(s.active == sess.ID, 0, false),
		ActiveSession: s.active,
	}
	snap := event.Session
	s.mu.Unlock()
	s.emitSessionEvent(event)
	log.Info("service session created", "session", sess.ID, "name", name)
	return schema.CreateSessionResponse{Session: snap}, nil
}

func (s *service) CloseSession(ctx context.Context, req schema.CloseSessionRequest) (schema.CloseSessionResponse, error) {
	log := logx.WithSession(ctx, req.SessionID)

	s.mu.Lock()
	sess := s.sessions[req.SessionID]
	if sess == nil {
		s.mu.Unlock()
		log.Warn("service session close failed", "err", schema.ErrSessionNotFound)
		return schema.CloseSessionResponse{}, schema.ErrSessionNotFound
	}
	if len(s.sessions) == 1 {
		s.mu.Unlock()
		log.Warn("service session close failed", "err", schema.ErrLastSession)
		return schema.CloseSessionResponse{}, schema.ErrLastSession
	}
	purged := s.queue.purgeSession(req.SessionID)
	s.conflicts.dropSession(req.SessionID)
	delete(s.sessions, req.SessionID)
	s.order = removeSessionID(s.order, req.SessionID)
	if s.active == req.SessionID {
		s.active = s.order[0]
	}
	now := s.now()
	snap := sess.Snapshot(false, 0, false)
	event := schema.SessionEvent{
		Type:          schema.SessionEventClosed,
		Session:       snap,
		ActiveSession: s.active,
	}
	queueEvent := schema.QueueEvent{Stats: s.statsSnapshotLocked(now)}
	transcript := s.transcriptLocked(sess, now)
	s.mu.Unlock()
	s.emitSessionEvent(event)
	s.emitQueueEvent(queueEvent)
	s.saveTranscript(log, transcript)
	log.Info("service session closed", "purged", purged)
	return schema.CloseSessionResponse{Session: snap}, nil
}

func (s *service) RenameSession(ctx context.Context, req schema.RenameSessionRequest) (schema.RenameSessionResponse, error) {
	log := logx.WithSession(ctx, req.SessionID)
	if strings.TrimSpace(string(req.Name)) == "" {
		return schema.RenameSessionResponse{}, schema.ErrInvalidName
	}
	name := schema.SessionName(formatSessionName(string(req.Name), s.cfg.SessionNameMax, s.cfg.SessionNameSuffix))

	s.mu.Lock()
	sess := s.sessions[req.SessionID]
	if sess == nil {
		s.mu.Unlock()
		log.Warn("service session rename failed", "err", schema.ErrSessionNotFound)
		return schema.RenameSessionResponse{}, schema.ErrSessionNotFound
	}
	sess.Name = name
	snap := sess.Snapshot(s.active == sess.ID, s.queue.queuedFor(sess.ID), false)
	event := schema.SessionEvent{
		Type:          schema.SessionEventRenamed,
		Session:       snap,
		ActiveSession: s.active,
	}
	s.mu.Unlock()
	s.emitSessionEvent(event)
	log.Info("service session renamed", "name", name)
	return schema.RenameSessionResponse{Session: snap}, nil
}

func (s *service) ActivateSession(ctx context.Context, req schema.ActivateSessionRequest) (schema.ActivateSessionResponse, error) {
	log := logx.WithSession(ctx, req.SessionID)

	s.mu.Lock()
	sess := s.sessions[req.SessionID]
	if sess == nil {
		s.mu.Unlock()
		log.Warn("service session activate failed", "err", schema.ErrSessionNotFound)
		return schema.ActivateSessionResponse{}, schema.ErrSessionNotFound
	}
	s.active = req.SessionID
	sess.Unread = false
	snap := sess.Snapshot(true, s.queue.queuedFor(sess.ID), false)
	event := schema.SessionEvent{
		Type:          schema.SessionEventActivated,
		Session:       snap,
		ActiveSession: s.active,
	}
	s.mu.Unlock()
	s.emitSessionEvent(event)
	log.Info("service session activated")
	return schema.ActivateSessionResponse{Session: snap}, nil
}

func (s *service) ListSessions(ctx context.Context, req schema.ListSessionsRequest) (schema.ListSessionsResponse, error) {
	log := logx.Ctx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]schema.SessionSnapshot, 0, len(s.order))
	for _, id := range s.order {
		sess := s.sessions[id]
		if sess == nil {
			continue
		}
		sessions = append(sessions, sess.Snapshot(id == s.active, s.queue.queuedFor(id), req.IncludeMessages))
	}
	log.Trace("service sessions listed", "count", len(sessions), "active", s.active)
	return schema.ListSessionsResponse{Sessions: sessions, ActiveSession: s.active}, nil
}

func (s *service) CancelQueued(ctx context.Context, req schema.CancelQueuedRequest) (schema.CancelQueuedResponse, error) {
	log := logx.Ctx(ctx)

	s.mu.Lock()
	entry, ok := s.queue.cancel(req.EntryID)
	var events []schema.SessionEvent
	var queueEvent schema.QueueEvent
	if ok {
		if sess := s.sessions[entry.sessionID]; sess != nil {
			events = append(events, s.statusEventLocked(sess))
		}
		queueEvent = schema.QueueEvent{Stats: s.statsSnapshotLocked(s.now())}
	}
	s.mu.Unlock()
	if !ok {
		log.Warn("service cancel failed", "entry", req.EntryID, "err", schema.ErrEntryNotFound)
		return schema.CancelQueuedResponse{}, schema.ErrEntryNotFound
	}
	for _, event := range events {
		s.emitSessionEvent(event)
	}
	s.emitQueueEvent(queueEvent)
	log.Info("service entry cancelled", "entry", req.EntryID, "session", entry.sessionID)
	return schema.CancelQueuedResponse{Cancelled: true}, nil
}

func (s *service) AcknowledgeConflict(ctx context.Context, req schema.AcknowledgeConflictRequest) (schema.AcknowledgeConflictResponse, error) {
	log := logx.WithSession(ctx, req.SessionID)

	s.mu.Lock()
	sess := s.sessions[req.SessionID]
	if sess == nil {
		s.mu.Unlock()
		log.Warn("service conflict ack failed", "err", schema.ErrSessionNotFound)
		return schema.AcknowledgeConflictResponse{}, schema.ErrSessionNotFound
	}
	sess.Conflict = false
	event := s.statusEventLocked(sess)
	snap := event.Session
	s.mu.Unlock()
	s.emitSessionEvent(event)
	log.Info("service conflict acknowledged")
	return schema.AcknowledgeConflictResponse{Session: snap}, nil
}

func (s *service) ListConflicts(ctx context.Context, req schema.ListConflictsRequest) (schema.ListConflictsResponse, error) {
	_ = req
	log := logx.Ctx(ctx)

	s.mu.Lock()
	conflicts := s.conflicts.openConflicts(s.now())
	s.mu.Unlock()
	log.Trace("service conflicts listed", "count", len(conflicts))
	return schema.ListConflictsResponse{Conflicts: conflicts}, nil
}

func (s *service) QueueStats(ctx context.Context, req schema.QueueStatsRequest) (schema.QueueStatsResponse, error) {
	_ = req
	log := logx.Ctx(ctx)

	s.mu.Lock()
	stats := s.statsSnapshotLocked(s.now())
	s.mu.Unlock()
	log.Trace("service stats fetched", "queued", stats.TotalQueued, "processing", stats.Processing)
	return schema.QueueStatsResponse{Stats: stats}, nil
}

func (s *service) GetHistory(ctx context.Context, req schema.GetHistoryRequest) (schema.GetHistoryResponse, error) {
	log := logx.WithSession(ctx, req.SessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[req.SessionID]
	if sess == nil {
		log.Warn("service history get failed", "err", schema.ErrSessionNotFound)
		return schema.GetHistoryResponse{}, schema.ErrSessionNotFound
	}
	return schema.GetHistoryResponse{Entries: sess.history.Entries()}, nil
}

func (s *service) statusEventLocked(sess *session) schema.SessionEvent {
	return schema.SessionEvent{
		Type:          schema.SessionEventStatus,
		Session:       sess.Snapshot(s.active == sess.ID, s.queue.queuedFor(sess.ID), false),
		ActiveSession: s.active,
	}
}

func (s *service) statsSnapshotLocked(now time.Time) schema.QueueStats {
	return s.stats.snapshot(now, s.queue.totalQueued(), s.queue.processing())
}

func (s *service) transcriptLocked(sess *session, now time.Time) *persist.Transcript {
	if s.store == nil {
		return nil
	}
	return &persist.Transcript{
		SessionID: sess.ID,
		Name:      sess.Name,
		Provider:  sess.Provider,
		Messages:  append([]schema.Message(nil), sess.Messages...),
		SavedAt:   now,
	}
}

func (s *service) saveTranscript(log pslog.Logger, transcript *persist.Transcript) {
	if transcript == nil || s.store == nil {
		return
	}
	if err := s.store.Save(*transcript); err != nil && log != nil {
		log.Warn("service transcript save failed", "err", err)
	}
}

func (s *service) emitSessionEvent(event schema.SessionEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnSessionEvent(event)
}

func (s *service) emitMessageEvent(event schema.MessageEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnMessageEvent(event)
}

func (s *service) emitQueueEvent(event schema.QueueEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnQueueEvent(event)
}

func (s *service) emitConflictEvent(event schema.ConflictEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnConflictEvent(event)
}

func formatSessionName(name string, max int, suffix string) string {
	if max <= 0 {
		return name
	}
	if len(name) <= max {
		return name
	}
	cut := max - len(suffix)
	if cut < 1 {
		return name[:max]
	}
	return name[:cut] + suffix
}

func removeSessionID(order []schema.SessionID, id schema.SessionID) []schema.SessionID {
	for i, current := range order {
		if current == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
