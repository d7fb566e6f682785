package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically sweeps stale limiter entries so the in-memory map
// stays bounded in user-id cardinality.
type Cleaner struct {
	sweeper  Sweeper
	limiter  Limiter
	log      *slog.Logger
	interval time.Duration
	factor   int
}

// NewCleaner constructs a Cleaner. Entries older than factor times the
// current cooldown are evicted on each pass.
func NewCleaner(sweeper Sweeper, limiter Limiter, interval time.Duration, factor int, log *slog.Logger) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if factor <= 0 {
		factor = 10
	}

	return &Cleaner{
		sweeper:  sweeper,
		limiter:  limiter,
		log:      log,
		interval: interval,
		factor:   factor,
	}
}

// Run starts the sweep loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c.sweeper == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if c.log != nil {
				c.log.Info("cooldown cleaner stopped", slog.String("reason", ctx.Err().Error()))
			}
			return
		case <-ticker.C:
			maxAge := time.Duration(c.factor) * c.currentCooldown()
			if evicted := c.sweeper.Sweep(maxAge); evicted > 0 && c.log != nil {
				c.log.Info("cooldown entries evicted", slog.Int("count", evicted))
			}
		}
	}
}

func (c *Cleaner) currentCooldown() time.Duration {
	if c.limiter == nil {
		return DefaultCooldown
	}

	return c.limiter.Cooldown()
}
