package status

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// MetricMap holds named metrics of type T, created on first use
// Pointers stay valid for the map's lifetime; callers cache them and update without the lock
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, allocating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	if ptr := m.lookup(key); ptr != nil {
		return ptr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ptr, ok := m.items[key]
	if !ok {
		ptr = new(T)
		m.items[key] = ptr
	}
	return ptr
}

func (m *MetricMap[T]) lookup(key string) *T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key]
}

// Keys returns registered keys under prefix in sorted order, "" selects all
// Keys are dotted by subsystem, so "blob." selects the per-blob counters
func (m *MetricMap[T]) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := slices.Sorted(maps.Keys(m.items))
	return slices.DeleteFunc(keys, func(k string) bool {
		return !strings.HasPrefix(k, prefix)
	})
}

// Range visits the metrics under prefix in key order
func (m *MetricMap[T]) Range(prefix string, fn func(key string, ptr *T)) {
	for _, k := range m.Keys(prefix) {
		fn(k, m.lookup(k))
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
