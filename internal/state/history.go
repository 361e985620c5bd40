package state

import (
	"fmt"

	"teamplanner/internal/model"
)

// HistoryLimit is the number of orchestration runs kept.
const HistoryLimit = 10

// History is a fixed-capacity ring buffer of orchestration results. Items
// returns newest first; pushing onto a full buffer evicts the oldest entry.
type History struct {
	buf  []*model.OrchestrationResult
	head int // index of the next write
	n    int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryLimit
	}
	return &History{buf: make([]*model.OrchestrationResult, capacity)}
}

// Push records r as the newest entry.
func (h *History) Push(r *model.OrchestrationResult) {
	h.buf[h.head] = r
	h.head = (h.head + 1) % len(h.buf)
	if h.n < len(h.buf) {
		h.n++
	}
	if h.n > len(h.buf) {
		panic(fmt.Sprintf("history length %d exceeds capacity %d", h.n, len(h.buf)))
	}
}

// Items returns a newest-first copy.
func (h *History) Items() []*model.OrchestrationResult {
	out := make([]*model.OrchestrationResult, 0, h.n)
	for i := 1; i <= h.n; i++ {
		idx := (h.head - i + len(h.buf)) % len(h.buf)
		out = append(out, h.buf[idx])
	}
	return out
}

func (h *History) Len() int { return h.n }

func (h *History) Cap() int { return len(h.buf) }

func (h *History) Clear() {
	for i := range h.buf {
		h.buf[i] = nil
	}
	h.head, h.n = 0, 0
}
