package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryLimiter tracks the last accepted request per user in process
// memory. State is lost on restart; a periodic sweep bounds its size.
type MemoryLimiter struct {
	mu       sync.Mutex
	last     map[int64]time.Time
	cooldown atomic.Int64
	now      func() time.Time
	log      *slog.Logger
}

var _ Limiter = (*MemoryLimiter)(nil)
var _ Sweeper = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns an in-memory limiter with the given cooldown.
func NewMemoryLimiter(cooldown time.Duration, log *slog.Logger) *MemoryLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = slog.Default()
	}

	m := &MemoryLimiter{
		last: make(map[int64]time.Time),
		now:  time.Now,
		log:  log,
	}
	m.cooldown.Store(int64(cooldown))

	return m
}

// TryAcquire accepts the request iff the cooldown has elapsed since the
// last accepted request from userID. An unknown user is treated as having
// requested infinitely long ago. The check and the timestamp update are
// one critical section: two concurrent calls for the same user can never
// both be accepted within a single window.
func (m *MemoryLimiter) TryAcquire(_ context.Context, userID int64) (bool, error) {
	now := m.now()
	cooldown := m.Cooldown()

	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.last[userID]; ok && now.Sub(last) < cooldown {
		return false, nil
	}

	m.last[userID] = now
	return true, nil
}

// Cooldown returns the current window length.
func (m *MemoryLimiter) Cooldown() time.Duration {
	return time.Duration(m.cooldown.Load())
}

// SetCooldown replaces the window length. Safe for concurrent use.
func (m *MemoryLimiter) SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}

	m.cooldown.Store(int64(d))
}

// Sweep evicts entries whose last accepted request is older than maxAge
// and returns the number of evicted entries.
func (m *MemoryLimiter) Sweep(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}

	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for userID, last := range m.last {
		if last.Before(cutoff) {
			delete(m.last, userID)
			evicted++
		}
	}

	return evicted
}

// Len reports how many users are currently tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.last)
}
