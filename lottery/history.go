package lottery

import (
	"time"

	"github.com/google/uuid"
)

const DefaultRetention = 10

// HistoryEntry is an archived session. Entries handed out by History are
// copies; nothing outside History can change a stored entry.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Numbers   []int     `json:"numbers"`
	Timestamp time.Time `json:"timestamp"`
}

func (h HistoryEntry) clone() HistoryEntry {
	h.Numbers = append([]int(nil), h.Numbers...)
	return h
}

// History is the most-recent-first log of archived sessions, capped at the
// retention limit.
type History struct {
	entries []HistoryEntry
	limit   int
	now     func() time.Time
	newID   func() string
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultRetention
	}
	return &History{
		entries: make([]HistoryEntry, 0, limit),
		limit:   limit,
		now:     time.Now,
		newID:   newEntryID,
	}
}

// newEntryID returns a UUIDv7, which embeds the creation time.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Archive snapshots numbers as a new entry at the front and evicts from the
// tail beyond the retention limit. Empty input archives nothing.
func (h *History) Archive(numbers []int) (HistoryEntry, bool) {
	if len(numbers) == 0 {
		return HistoryEntry{}, false
	}
	entry := HistoryEntry{
		ID:        h.newID(),
		Numbers:   append([]int(nil), numbers...),
		Timestamp: h.now().UTC().Round(0),
	}

	h.entries = append(h.entries, HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = entry
	h.trim()
	return entry.clone(), true
}

func (h *History) trim() {
	if len(h.entries) > h.limit {
		for i := h.limit; i < len(h.entries); i++ {
			h.entries[i] = HistoryEntry{}
		}
		h.entries = h.entries[:h.limit]
	}
}

// Restore replaces the log with entries (most recent first), dropping empty
// ones and anything beyond the retention limit.
func (h *History) Restore(entries []HistoryEntry) {
	h.entries = h.entries[:0]
	for _, e := range entries {
		if len(e.Numbers) == 0 {
			continue
		}
		h.entries = append(h.entries, e.clone())
	}
	h.trim()
}

// Entries returns a deep copy, most recent first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.clone()
	}
	return out
}

func (h *History) Find(id string) (HistoryEntry, bool) {
	for _, e := range h.entries {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return HistoryEntry{}, false
}

func (h *History) Clear() {
	h.entries = h.entries[:0]
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Limit() int {
	return h.limit
}
