// Package report delivers a scheduled usage summary to the administrator.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
	telebot "gopkg.in/telebot.v3"

	"github.com/rhnyadav/aitoolsbox/internal/repository"
)

// Sender abstracts the Telegram send call for testability.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Scheduler runs the daily usage report on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sender  Sender
	adminID int64
	users   repository.UserRepository
	bans    repository.BanRepository
	audit   repository.AuditRepository
	log     *slog.Logger
}

// NewScheduler builds a report scheduler. A zero adminID disables it.
func NewScheduler(
	sender Sender,
	adminID int64,
	users repository.UserRepository,
	bans repository.BanRepository,
	audit repository.AuditRepository,
	log *slog.Logger,
) *Scheduler {
	if log == nil {
		log = slog.Default()
	}

	return &Scheduler{
		cron:    cron.New(),
		sender:  sender,
		adminID: adminID,
		users:   users,
		bans:    bans,
		audit:   audit,
		log:     log,
	}
}

// Start schedules the report with the given cron expression and begins
// running. Returns an error for an invalid expression.
func (s *Scheduler) Start(schedule string) error {
	if s.adminID == 0 {
		s.log.Info("report scheduler disabled: no admin configured")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.deliver); err != nil {
		return fmt.Errorf("schedule usage report: %w", err)
	}

	s.cron.Start()
	s.log.Info("report scheduler started", slog.String("schedule", schedule))

	return nil
}

// Stop halts the scheduler and waits for a running delivery to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) deliver() {
	text, err := s.Compose(context.Background())
	if err != nil {
		s.log.Error("failed to compose usage report", slog.Any("error", err))
		return
	}

	if _, err := s.sender.Send(&telebot.User{ID: s.adminID}, text, telebot.ModeMarkdown); err != nil {
		s.log.Error("failed to deliver usage report", slog.Any("error", err))
		return
	}

	s.log.Info("usage report delivered", slog.Int64("admin_id", s.adminID))
}

// Compose renders the report body from current store aggregates.
func (s *Scheduler) Compose(ctx context.Context) (string, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return "", err
	}

	banCount, err := s.bans.Count(ctx)
	if err != nil {
		return "", err
	}

	usageCount, err := s.audit.UsageCount(ctx)
	if err != nil {
		return "", err
	}

	topTools, err := s.audit.TopTools(ctx, 5)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("🗞 *Daily Usage Report*\n\n")
	fmt.Fprintf(&sb, "Users: %d\nBanned: %d\nTool activations: %d\n", userCount, banCount, usageCount)
	if len(topTools) > 0 {
		sb.WriteString("\nTop tools:\n")
		for _, usage := range topTools {
			fmt.Fprintf(&sb, "• %s — %d\n", usage.Tool, usage.Count)
		}
	}

	return sb.String(), nil
}
