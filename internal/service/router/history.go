package router

import (
	"sync"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// history keeps a bounded ring of recent executions and cumulative counters.
type history struct {
	mu      sync.Mutex
	size    int
	records []domain.ExecutionRecord
	next    int

	total     int
	fallbacks int
	failures  int
	elapsed   time.Duration
	byHandler map[domain.HandlerKind]int
}

func newHistory(size int) *history {
	return &history{
		size:      max(size, 0),
		records:   make([]domain.ExecutionRecord, 0, max(size, 0)),
		byHandler: make(map[domain.HandlerKind]int),
	}
}

func (h *history) add(rec domain.ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.total++
	h.elapsed += rec.Duration
	h.byHandler[rec.Handler]++
	if rec.Fallback {
		h.fallbacks++
	}
	if rec.Err != "" {
		h.failures++
	}

	if h.size == 0 {
		return
	}
	if len(h.records) < h.size {
		h.records = append(h.records, rec)
	} else {
		h.records[h.next] = rec
	}
	h.next = (h.next + 1) % h.size
}

// recent returns up to limit records, most recent first. limit <= 0 returns all.
func (h *history) recent(limit int) []domain.ExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.ExecutionRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, h.records[(h.next-i+n)%n])
	}
	return out
}

func (h *history) metrics() domain.RouterMetrics {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := domain.RouterMetrics{
		TotalRequests: h.total,
		Fallbacks:     h.fallbacks,
		Failures:      h.failures,
		ByHandler:     make(map[domain.HandlerKind]int, len(h.byHandler)),
	}
	for k, v := range h.byHandler {
		m.ByHandler[k] = v
	}
	if h.total > 0 {
		m.AverageDuration = h.elapsed / time.Duration(h.total)
	}
	return m
}
