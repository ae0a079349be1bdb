package discovery

import (
	"sync"
	"time"
)

// HistoryEntry records one discovery operation for telemetry.
type HistoryEntry struct {
	Time     time.Time `json:"time"`
	Op       string    `json:"op"`
	Task     string    `json:"task,omitempty"`
	Outcome  string    `json:"outcome"`
	Degraded bool      `json:"degraded"`
}

// History is a bounded ring of recent discovery operations. Once full, new
// entries evict the oldest. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	entries  []HistoryEntry
	capacity int
	start    int
	count    int
}

// NewHistory returns a ring holding up to capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{
		entries:  make([]HistoryEntry, capacity),
		capacity: capacity,
	}
}

// Record appends an entry, evicting the oldest when full.
func (h *History) Record(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count < h.capacity {
		h.entries[(h.start+h.count)%h.capacity] = entry
		h.count++
		return
	}
	h.entries[h.start] = entry
	h.start = (h.start + 1) % h.capacity
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Snapshot returns a copy of the entries in chronological order.
func (h *History) Snapshot() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.entries[(h.start+i)%h.capacity]
	}
	return out
}
