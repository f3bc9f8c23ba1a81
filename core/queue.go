package core

import (
	"time"

	"pkt.systems/promptdeck/schema"
)

// queueEntry lives from enqueue until it is admitted (promoted in flight) or
// discarded with its session.
type queueEntry struct {
	id         schema.EntryID
	sessionID  schema.SessionID
	prompt     string
	files      []string
	enqueuedAt time.Time
	startedAt  time.Time
}

// promptQueue holds per-session FIFO queues and admits entries in flight
// under a global cap. Admission walks the session rotation starting after the
// last-admitted session, so no session can be starved while others keep
// sending. A session never has more than one entry in flight.
type promptQueue struct {
	pending  map[schema.SessionID][]*queueEntry
	byID     map[schema.EntryID]*queueEntry
	inFlight map[schema.SessionID]*queueEntry
	cap      int
	last     schema.SessionID
}

func newPromptQueue(capacity int) *promptQueue {
	if capacity <= 0 {
		capacity = schema.DefaultMaxConcurrent
	}
	return &promptQueue{
		pending:  make(map[schema.SessionID][]*queueEntry),
		byID:     make(map[schema.EntryID]*queueEntry),
		inFlight: make(map[schema.SessionID]*queueEntry),
		cap:      capacity,
	}
}

func (q *promptQueue) enqueue(entry *queueEntry) {
	q.pending[entry.sessionID] = append(q.pending[entry.sessionID], entry)
	q.byID[entry.id] = entry
}

// admitNext promotes the next eligible head-of-queue entry to in flight and
// advances the rotation pointer past its session. Returns nil when the cap is
// reached or no session is eligible.
func (q *promptQueue) admitNext(order []schema.SessionID, now time.Time) *queueEntry {
	if len(q.inFlight) >= q.cap || len(order) == 0 {
		return nil
	}
	start := 0
	if q.last != "" {
		for i, id := range order {
			if id == q.last {
				start = i + 1
				break
			}
		}
	}
	for i := 0; i < len(order); i++ {
		sid := order[(start+i)%len(order)]
		if _, busy := q.inFlight[sid]; busy {
			continue
		}
		list := q.pending[sid]
		if len(list) == 0 {
			continue
		}
		entry := list[0]
		if len(list) == 1 {
			delete(q.pending, sid)
		} else {
			q.pending[sid] = list[1:]
		}
		delete(q.byID, entry.id)
		entry.startedAt = now
		q.inFlight[sid] = entry
		q.last = sid
		return entry
	}
	return nil
}

// settle frees the in-flight slot held by the entry's session.
func (q *promptQueue) settle(entry *queueEntry) {
	if current, ok := q.inFlight[entry.sessionID]; ok && current == entry {
		delete(q.inFlight, entry.sessionID)
	}
}

// cancel removes a not-yet-admitted entry. In-flight entries are not
// cancellable at this layer.
func (q *promptQueue) cancel(id schema.EntryID) (*queueEntry, bool) {
	entry, ok := q.byID[id]
	if !ok {
		return nil, false
	}
	delete(q.byID, id)
	list := q.pending[entry.sessionID]
	next := list[:0]
	for _, e := range list {
		if e.id != id {
			next = append(next, e)
		}
	}
	if len(next) == 0 {
		delete(q.pending, entry.sessionID)
	} else {
		q.pending[entry.sessionID] = next
	}
	return entry, true
}

// purgeSession discards all queued entries for a closed session and returns
// how many were dropped. An in-flight entry is left alone; its settle is
// discarded by the dispatcher.
func (q *promptQueue) purgeSession(id schema.SessionID) int {
	list := q.pending[id]
	for _, entry := range list {
		delete(q.byID, entry.id)
	}
	delete(q.pending, id)
	return len(list)
}

func (q *promptQueue) queuedFor(id schema.SessionID) int {
	return len(q.pending[id])
}

func (q *promptQueue) totalQueued() int {
	total := 0
	for _, list := range q.pending {
		total += len(list)
	}
	return total
}

func (q *promptQueue) processing() int {
	return len(q.inFlight)
}
