package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements the cooldown contract with SET NX PX: the key
// exists for exactly one window after an accepted request, so a second
// acquire inside the window fails and the TTL evicts state automatically.
type RedisLimiter struct {
	client   *redis.Client
	cooldown atomic.Int64
	log      *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, cooldown time.Duration, log *slog.Logger) *RedisLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = slog.Default()
	}

	l := &RedisLimiter{
		client: client,
		log:    log,
	}
	l.cooldown.Store(int64(cooldown))

	return l
}

// TryAcquire attempts to claim the per-user cooldown key.
func (l *RedisLimiter) TryAcquire(ctx context.Context, userID int64) (bool, error) {
	if l.client == nil {
		return false, ErrBackendUnavailable
	}

	acquired, err := l.client.SetNX(ctx, cooldownKey(userID), 1, l.Cooldown()).Result()
	if err != nil {
		if l.log != nil {
			l.log.Error("cooldown check failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return acquired, nil
}

// Cooldown returns the current window length.
func (l *RedisLimiter) Cooldown() time.Duration {
	return time.Duration(l.cooldown.Load())
}

// SetCooldown replaces the window length for subsequent checks. Keys
// already claimed keep their original TTL.
func (l *RedisLimiter) SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}

	l.cooldown.Store(int64(d))
}

func cooldownKey(userID int64) string {
	return fmt.Sprintf("cooldown:user:%d", userID)
}
