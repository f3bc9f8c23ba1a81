package core

import (
	"path"
	"sort"
	"strings"
	"time"

	"pkt.systems/promptdeck/schema"
)

type fileTouch struct {
	session schema.SessionID
	at      time.Time
}

// conflictDetector tracks per-path file touches inside a sliding window and
// flags paths touched by two or more sessions within it.
type conflictDetector struct {
	window  time.Duration
	touches map[string][]fileTouch
	open    map[string]schema.Conflict
}

func newConflictDetector(window time.Duration) *conflictDetector {
	if window <= 0 {
		window = schema.DefaultConflictWindow
	}
	return &conflictDetector{
		window:  window,
		touches: make(map[string][]fileTouch),
		open:    make(map[string]schema.Conflict),
	}
}

// observe records a touch and returns a conflict record when the path has
// been touched by at least two distinct sessions within the window.
func (d *conflictDetector) observe(p string, session schema.SessionID, at time.Time) (schema.Conflict, bool) {
	p = normalizePath(p)
	if p == "" {
		return schema.Conflict{}, false
	}
	kept := d.touches[p][:0]
	for _, t := range d.touches[p] {
		if at.Sub(t.at) <= d.window {
			kept = append(kept, t)
		}
	}
	kept = append(kept, fileTouch{session: session, at: at})
	d.touches[p] = kept

	seen := make(map[schema.SessionID]struct{}, len(kept))
	for _, t := range kept {
		seen[t.session] = struct{}{}
	}
	if len(seen) < 2 {
		return schema.Conflict{}, false
	}
	sessions := make([]schema.SessionID, 0, len(seen))
	for id := range seen {
		sessions = append(sessions, id)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i] < sessions[j] })
	conflict := schema.Conflict{Path: p, Sessions: sessions, DetectedAt: at}
	d.open[p] = conflict
	return conflict, true
}

// openConflicts prunes records whose window elapsed without a new touch and
// returns the remainder ordered by detection time.
func (d *conflictDetector) openConflicts(now time.Time) []schema.Conflict {
	out := make([]schema.Conflict, 0, len(d.open))
	for p, conflict := range d.open {
		latest := time.Time{}
		for _, t := range d.touches[p] {
			if t.at.After(latest) {
				latest = t.at
			}
		}
		if latest.IsZero() || now.Sub(latest) > d.window {
			delete(d.open, p)
			continue
		}
		out = append(out, conflict)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].Path < out[j].Path
		}
		return out[i].DetectedAt.Before(out[j].DetectedAt)
	})
	return out
}

// dropSession removes all touches by a closed session and retires conflict
// records it no longer sustains.
func (d *conflictDetector) dropSession(id schema.SessionID) {
	for p, touches := range d.touches {
		kept := touches[:0]
		for _, t := range touches {
			if t.session != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(d.touches, p)
		} else {
			d.touches[p] = kept
		}
	}
	for p, conflict := range d.open {
		kept := conflict.Sessions[:0]
		for _, sid := range conflict.Sessions {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		if len(kept) < 2 {
			delete(d.open, p)
			continue
		}
		conflict.Sessions = kept
		d.open[p] = conflict
	}
}

func normalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
