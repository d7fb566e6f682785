package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/rhnyadav/aitoolsbox/internal/ads"
	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
	"github.com/rhnyadav/aitoolsbox/internal/ratelimit"
	"github.com/rhnyadav/aitoolsbox/internal/repository"
	"github.com/rhnyadav/aitoolsbox/internal/session"
	"github.com/rhnyadav/aitoolsbox/internal/subscription"
	"github.com/rhnyadav/aitoolsbox/internal/tools"
	"github.com/rhnyadav/aitoolsbox/pkg/metrics"
)

const activatedPrefix = "🛠 *Tool Activated*\n\n"

// ToolSelectionDeps carries everything the tool selection flow touches.
type ToolSelectionDeps struct {
	Bans     repository.BanRepository
	Limiter  ratelimit.Limiter
	Sessions *session.Manager
	Audit    repository.AuditRepository
	Guard    *subscription.Guard
	Ads      *ads.Rotator
	Log      *slog.Logger
}

// NewToolSelectionHandler processes a tool menu button press. Checks run in
// a fixed order: subscription gate, ban list, cooldown. A rejected press
// leaves the cooldown clock and the active tool untouched; an accepted one
// replaces the active tool, logs usage in the background, and replies with
// the activation prompt.
func NewToolSelectionHandler(deps ToolSelectionDeps) CallbackHandler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Callback() == nil || c.Sender() == nil {
			log.Warn("tool selection invoked without callback or sender")
			return nil
		}

		// Ack the press so the client stops its spinner regardless of outcome.
		_ = c.Respond(&telebot.CallbackResponse{})

		sender := c.Sender()
		token := normalizeToken(c.Callback().Data)

		if !tools.IsKnown(token) {
			metrics.RecordRejection(metrics.RejectionUnknownTool)
			return apperrors.NewValidationError("❓ Unknown tool selection.")
		}

		if deps.Guard.Enabled() && !deps.Guard.Allowed(sender) {
			metrics.RecordRejection(metrics.RejectionSubscription)
			return c.Send("🔔 Join " + deps.Guard.Channel() + " to unlock the tools, then try again.")
		}

		ctx := context.Background()

		banned, err := deps.Bans.IsBanned(ctx, sender.ID)
		if err != nil {
			return err
		}
		if banned {
			metrics.RecordRejection(metrics.RejectionBanned)
			return c.Send("🚫 You are banned.")
		}

		ok, err := deps.Limiter.TryAcquire(ctx, sender.ID)
		if err != nil {
			// An unreachable limiter backend degrades to admission, not denial.
			log.Warn("cooldown check failed, admitting request",
				slog.Int64("user_id", sender.ID),
				slog.Any("error", err),
			)
			ok = true
		}
		if !ok {
			metrics.RecordRejection(metrics.RejectionCooldown)
			return c.Send(apperrors.NewRateLimitError().UserMessage)
		}

		deps.Sessions.SetActive(sender.ID, token)
		metrics.RecordToolActivation(token)

		if deps.Audit != nil {
			go func(userID int64, tool string) {
				if err := deps.Audit.RecordUsage(context.Background(), userID, tool); err != nil {
					log.Warn("failed to record tool usage",
						slog.Int64("user_id", userID),
						slog.String("tool", tool),
						slog.Any("error", err),
					)
				}
			}(sender.ID, token)
		}

		prompt, _ := tools.Prompt(token)
		reply := activatedPrefix + prompt
		if footer, due := deps.Ads.Footer(sender.ID); due {
			reply += footer
		}

		return c.Send(reply, telebot.ModeMarkdown)
	}
}

// normalizeToken strips the telebot callback framing so raw menu tokens
// and "\funique|payload" style data resolve to the same token.
func normalizeToken(data string) string {
	data = strings.TrimPrefix(data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}

	return strings.TrimSpace(data)
}
