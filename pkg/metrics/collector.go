package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
)

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates received labeled by action and status",
		},
		[]string{"action", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_update_duration_seconds",
			Help:    "Duration of bot update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	toolActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_activations_total",
			Help: "Total number of accepted tool activations per tool token",
		},
		[]string{"tool"},
	)
	rejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_rejections_total",
			Help: "Total number of rejected tool selections split by reason",
		},
		[]string{"reason"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of handled errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of users with an active tool selection",
		},
	)
	trackedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cooldown_tracked_users",
			Help: "Current number of users tracked by the cooldown limiter",
		},
	)
)

const (
	RejectionBanned       = "banned"
	RejectionCooldown     = "cooldown"
	RejectionUnknownTool  = "unknown_tool"
	RejectionSubscription = "subscription"
)

func init() {
	apperrors.RegisterErrorRecorder(RecordError)
}

// RecordUpdate increments update counters and records handling duration.
func RecordUpdate(action, status string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	updatesTotal.WithLabelValues(action, status).Inc()
	updateDurationSeconds.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordToolActivation counts an accepted tool activation.
func RecordToolActivation(tool string) {
	if tool == "" {
		tool = "unknown"
	}

	toolActivationsTotal.WithLabelValues(tool).Inc()
}

// RecordRejection counts a rejected tool selection.
func RecordRejection(reason string) {
	if reason == "" {
		reason = "unknown"
	}

	rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// Sized reports the size of an in-process map, such as the session
// manager or the memory limiter.
type Sized interface {
	Len() int
}

// Collector periodically samples in-process gauges.
type Collector struct {
	sessions Sized
	limiter  Sized
	interval time.Duration
}

// NewCollector builds a gauge collector over the provided sources; nil
// sources are skipped.
func NewCollector(sessions, limiter Sized) *Collector {
	return &Collector{
		sessions: sessions,
		limiter:  limiter,
		interval: 10 * time.Second,
	}
}

// Run samples the gauges until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		c.collect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *Collector) collect() {
	if c.sessions != nil {
		activeSessions.Set(float64(c.sessions.Len()))
	}
	if c.limiter != nil {
		trackedUsers.Set(float64(c.limiter.Len()))
	}
}
