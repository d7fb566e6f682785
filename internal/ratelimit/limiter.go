// Package ratelimit enforces a per-user cooldown window between accepted
// requests: one request per window, no accumulation of unused capacity.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// DefaultCooldown is the minimum gap between accepted requests per user.
const DefaultCooldown = 6 * time.Second

// Limiter describes the cooldown contract.
type Limiter interface {
	// TryAcquire reports whether a request from userID is accepted now.
	// Acceptance records the request time; rejection leaves state unchanged.
	TryAcquire(ctx context.Context, userID int64) (bool, error)
	// Cooldown returns the current window length.
	Cooldown() time.Duration
	// SetCooldown replaces the window length for subsequent checks.
	SetCooldown(d time.Duration)
}

// Sweeper is implemented by limiters that hold evictable in-process state.
type Sweeper interface {
	Sweep(maxAge time.Duration) int
}

// ErrBackendUnavailable indicates the limiter backend could not be reached.
var ErrBackendUnavailable = errors.New("rate limit backend unavailable")
