package core

import "strings"

// historyRing keeps a bounded list of past prompts for recall. Consecutive
// duplicates are collapsed.
type historyRing struct {
	entries []string
	max     int
}

func newHistoryRing(max int) *historyRing {
	if max <= 0 {
		max = 200
	}
	return &historyRing{max: max}
}

func (h *historyRing) Append(entry string) bool {
	if h == nil {
		return false
	}
	if strings.TrimSpace(entry) == "" {
		return false
	}
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		return false
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	return true
}

func (h *historyRing) Entries() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.entries...)
}
