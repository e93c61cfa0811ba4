// api/util/metrics.go
package util

import (
	"sync"
)

// MetricsRegistry is an in-process counter store for the
// /metrics export of spec.md §6. A single instance is shared process-wide.
type MetricsRegistry struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{counters: make(map[string]int64)}
}

// Incr increments a named counter, e.g. "enforce.allow", "enforce.deny",
// "enforce.pending", "approvals.decided.approved".
func (m *MetricsRegistry) Incr(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Snapshot returns a point-in-time copy of every counter for JSON export.
func (m *MetricsRegistry) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}
