package core

import (
	"context"
	"strings"
	"time"

	"pkt.systems/promptdeck/internal/logx"
	"pkt.systems/promptdeck/internal/persist"
	"pkt.systems/promptdeck/schema"
)

// launch carries an admitted entry out of the lock so the adapter call can
// run concurrently.
type launch struct {
	entry    *queueEntry
	provider schema.ProviderID
}

func (s *service) SendPrompt(ctx context.Context, req schema.SendPromptRequest) (schema.SendPromptResponse, error) {
	if s.adapters == nil {
		return schema.SendPromptResponse{}, schema.ErrAdapterUnavailable
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return schema.SendPromptResponse{}, schema.ErrEmptyPrompt
	}
	log := logx.WithSession(ctx, req.SessionID)

	s.mu.Lock()
	sess := s.sessions[req.SessionID]
	if sess == nil {
		s.mu.Unlock()
		log.Warn("service prompt rejected", "err", schema.ErrSessionNotFound)
		return schema.SendPromptResponse{}, schema.ErrSessionNotFound
	}
	now := s.now()
	userMsg := schema.Message{
		ID:        schema.MessageID(newID()),
		Role:      schema.RoleUser,
		Content:   req.Prompt,
		Timestamp: now,
	}
	sess.append(userMsg)
	sess.history.Append(req.Prompt)
	entry := &queueEntry{
		id:         schema.EntryID(newID()),
		sessionID:  req.SessionID,
		prompt:     req.Prompt,
		files:      append([]string(nil), req.Files...),
		enqueuedAt: now,
	}
	s.queue.enqueue(entry)
	launches, launchEvents := s.scheduleLocked(now)
	msgEvent := schema.MessageEvent{SessionID: sess.ID, Message: userMsg}
	statusEvent := s.statusEventLocked(sess)
	queueEvent := schema.QueueEvent{Stats: s.statsSnapshotLocked(now)}
	snap := statusEvent.Session
	transcript := s.transcriptLocked(sess, now)
	s.mu.Unlock()

	s.emitMessageEvent(msgEvent)
	s.emitSessionEvent(statusEvent)
	for _, event := range launchEvents {
		s.emitSessionEvent(event)
	}
	s.emitQueueEvent(queueEvent)
	s.saveTranscript(log, transcript)
	log.Info("service prompt queued", "entry", entry.id, "prompt_len", len(req.Prompt))
	s.launch(launches)
	return schema.SendPromptResponse{EntryID: entry.id, Session: snap}, nil
}

// scheduleLocked admits entries until the cap is reached or nothing is
// eligible, marking each owning session as loading. The caller emits the
// returned events and starts the launches after unlocking.
func (s *service) scheduleLocked(now time.Time) ([]launch, []schema.SessionEvent) {
	var launches []launch
	var events []schema.SessionEvent
	for {
		entry := s.queue.admitNext(s.order, now)
		if entry == nil {
			break
		}
		sess := s.sessions[entry.sessionID]
		if sess == nil {
			s.queue.settle(entry)
			continue
		}
		sess.Loading = true
		sess.LastActivity = now
		launches = append(launches, launch{entry: entry, provider: sess.Provider})
		events = append(events, s.statusEventLocked(sess))
	}
	return launches, events
}

func (s *service) launch(launches []launch) {
	for _, l := range launches {
		go s.dispatch(l)
	}
}

// dispatch drives one admitted entry through the provider adapter. It runs
// outside the service lock; every outcome funnels into settle.
func (s *service) dispatch(l launch) {
	log := logx.WithProvider(s.logger.With("session", l.entry.sessionID), l.provider)
	ctx := logx.ContextWithSessionLogger(context.Background(), log, l.entry.sessionID)
	log.Debug("service dispatch start", "entry", l.entry.id)
	adapter, err := s.adapters.AdapterFor(ctx, l.provider)
	var result SendResult
	if err == nil {
		result, err = adapter.Send(ctx, SendRequest{
			SessionID: l.entry.sessionID,
			Provider:  l.provider,
			Prompt:    l.entry.prompt,
		})
	}
	s.settle(l.entry, result, err)
}

// settle applies a terminal adapter outcome: message append, flag updates,
// stats, conflict touches, and a fresh admission pass for the freed slot. A
// settle for a session closed mid-flight is discarded, but still counts in
// the day's statistics and frees the slot.
func (s *service) settle(entry *queueEntry, result SendResult, sendErr error) {
	now := s.now()
	log := logx.WithSession(context.Background(), entry.sessionID)

	s.mu.Lock()
	s.queue.settle(entry)
	wait := entry.startedAt.Sub(entry.enqueuedAt)
	process := now.Sub(entry.startedAt)
	if sendErr != nil {
		s.stats.recordFailure(now, wait)
	} else {
		s.stats.recordCompletion(now, wait, process)
	}

	var events []schema.SessionEvent
	var msgEvent *schema.MessageEvent
	var conflictEvents []schema.ConflictEvent
	var transcript *persist.Transcript
	sess := s.sessions[entry.sessionID]
	if sess != nil {
		var msg schema.Message
		if sendErr != nil {
			msg = schema.Message{
				ID:        schema.MessageID(newID()),
				Role:      schema.RoleSystem,
				Content:   "provider error: " + sendErr.Error(),
				Timestamp: now,
			}
		} else {
			msg = schema.Message{
				ID:        schema.MessageID(newID()),
				Role:      schema.RoleAssistant,
				Content:   result.Content,
				Timestamp: now,
			}
		}
		sess.append(msg)
		sess.Loading = false
		if s.active != sess.ID {
			sess.Unread = true
		}
		msgEvent = &schema.MessageEvent{SessionID: sess.ID, Message: msg}
		if sendErr == nil {
			paths := append(append([]string(nil), entry.files...), result.TouchedFiles...)
			for _, p := range paths {
				conflict, ok := s.conflicts.observe(p, sess.ID, now)
				if !ok {
					continue
				}
				conflictEvents = append(conflictEvents, schema.ConflictEvent{Conflict: conflict})
				for _, sid := range conflict.Sessions {
					other := s.sessions[sid]
					if other == nil || other.Conflict {
						continue
					}
					other.Conflict = true
					if sid != sess.ID {
						events = append(events, s.statusEventLocked(other))
					}
				}
			}
		}
		events = append(events, s.statusEventLocked(sess))
		transcript = s.transcriptLocked(sess, now)
	}

	launches, launchEvents := s.scheduleLocked(now)
	events = append(events, launchEvents...)
	queueEvent := schema.QueueEvent{Stats: s.statsSnapshotLocked(now)}
	s.mu.Unlock()

	if msgEvent != nil {
		s.emitMessageEvent(*msgEvent)
	}
	for _, event := range events {
		s.emitSessionEvent(event)
	}
	for _, event := range conflictEvents {
		s.emitConflictEvent(event)
	}
	s.emitQueueEvent(queueEvent)
	s.saveTranscript(log, transcript)
	if sess == nil {
		s.logger.With("session", entry.sessionID).Debug("service settle discarded", "entry", entry.id)
	} else if sendErr != nil {
		log.Warn("service prompt failed", "entry", entry.id, "err", sendErr)
	} else {
		log.Debug("service prompt completed", "entry", entry.id,
			"wait_ms", wait.Milliseconds(), "process_ms", process.Milliseconds())
	}
	s.launch(launches)
}
