package memory

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Map is a mutex-guarded in-memory cache governed by a Governor.
//
// Load and Store record accesses, and Store checks memory pressure at most
// once per interval. The zero value is not usable; call NewMap.
type Map[V any] struct {
	gov *Governor

	mu    sync.Mutex
	items map[string]V

	every     time.Duration
	sometimes rate.Sometimes
}

// NewMap returns an empty governed map. interval throttles the cleanup check
// run by Store; interval <= 0 checks on every Store.
func NewMap[V any](g *Governor, interval time.Duration) *Map[V] {
	return &Map[V]{
		gov:       g,
		items:     make(map[string]V),
		every:     interval,
		sometimes: rate.Sometimes{First: 1, Interval: interval},
	}
}

// Load returns the value for key and marks it accessed.
func (m *Map[V]) Load(key string) (V, bool) {
	m.mu.Lock()
	v, ok := m.items[key]
	m.mu.Unlock()
	if ok {
		m.gov.MarkAccessed(key)
	}
	return v, ok
}

// Store sets the value for key, marks it accessed and, if due, runs a cleanup.
func (m *Map[V]) Store(key string, v V) {
	m.mu.Lock()
	m.items[key] = v
	m.mu.Unlock()
	m.gov.MarkAccessed(key)

	if m.every <= 0 {
		m.Cleanup()
		return
	}
	m.sometimes.Do(func() { m.Cleanup() })
}

// Delete removes key and its access record.
func (m *Map[V]) Delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	m.gov.Forget(key)
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Keys returns a sorted snapshot of the keys.
func (m *Map[V]) Keys() []string {
	m.mu.Lock()
	keys := plainMap[V](m.items).Keys()
	m.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Cleanup runs the governor's cleanup while holding the map lock.
func (m *Map[V]) Cleanup() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gov.CleanupIfNeeded(plainMap[V](m.items))
}
