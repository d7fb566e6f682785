// Package session holds the per-user "active tool" selection. The state
// is process-local: overwritten by each accepted selection and lost on
// restart.
package session

import (
	"sync"
	"time"
)

type entry struct {
	tool    string
	touched time.Time
}

// Manager is a synchronized user -> selected-tool mapping, owned by the
// bot wiring and injected into handlers.
type Manager struct {
	mu      sync.RWMutex
	entries map[int64]entry
	now     func() time.Time
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[int64]entry),
		now:     time.Now,
	}
}

// SetActive records tool as the user's active tool, replacing any
// previous selection.
func (m *Manager) SetActive(userID int64, tool string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[userID] = entry{tool: tool, touched: m.now()}
}

// Active returns the user's current tool selection, if any.
func (m *Manager) Active(userID int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	return e.tool, ok
}

// Clear drops the user's selection.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
}

// Sweep evicts selections untouched for longer than maxAge and returns
// the eviction count.
func (m *Manager) Sweep(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}

	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for userID, e := range m.entries {
		if e.touched.Before(cutoff) {
			delete(m.entries, userID)
			evicted++
		}
	}

	return evicted
}

// Len reports how many users currently have an active tool.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
