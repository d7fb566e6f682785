// Package ads appends sponsored footers to tool activations and records
// impressions in the ad log.
package ads

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rhnyadav/aitoolsbox/internal/repository"
)

const footerText = "\n\n📣 Sponsored — support the bot by checking our partner tools."

// Rotator decides when to show an ad: every Nth accepted tool activation
// per user. Impressions are logged best-effort; an unavailable store never
// blocks the activation reply.
type Rotator struct {
	enabled   bool
	frequency int
	audit     repository.AuditRepository
	log       *slog.Logger

	mu          sync.Mutex
	activations map[int64]int
}

// NewRotator constructs a Rotator. frequency <= 0 falls back to 3.
func NewRotator(enabled bool, frequency int, audit repository.AuditRepository, log *slog.Logger) *Rotator {
	if frequency <= 0 {
		frequency = 3
	}
	if log == nil {
		log = slog.Default()
	}

	return &Rotator{
		enabled:     enabled,
		frequency:   frequency,
		audit:       audit,
		log:         log,
		activations: make(map[int64]int),
	}
}

// Footer returns the ad footer for this activation, if one is due.
func (r *Rotator) Footer(userID int64) (string, bool) {
	if r == nil || !r.enabled {
		return "", false
	}

	r.mu.Lock()
	r.activations[userID]++
	due := r.activations[userID]%r.frequency == 0
	r.mu.Unlock()

	if !due {
		return "", false
	}

	if r.audit != nil {
		go func() {
			if err := r.audit.RecordAdImpression(context.Background(), userID); err != nil {
				r.log.Warn("failed to log ad impression", slog.Int64("user_id", userID), slog.Any("error", err))
			}
		}()
	}

	return footerText, true
}
