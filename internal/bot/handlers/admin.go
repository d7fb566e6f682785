package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
	"github.com/rhnyadav/aitoolsbox/internal/repository"
)

const adminPanelText = "👑 *Admin Panel*\n\n" +
	"/stats\n" +
	"/ban <user_id>\n" +
	"/unban <user_id>\n" +
	"/broadcast <message>"

// isAdmin reports whether the sender is the configured administrator.
// adminID == 0 means no admin is configured and nobody qualifies.
func isAdmin(adminID int64, c telebot.Context) bool {
	if adminID == 0 || c == nil || c.Sender() == nil {
		return false
	}

	return c.Sender().ID == adminID
}

// NewAdminPanelHandler shows the admin command summary. Non-admin senders
// get no reply at all; the command stays invisible to them.
func NewAdminPanelHandler(adminID int64, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if !isAdmin(adminID, c) {
			logDeniedAdmin(log, c, "/admin")
			return nil
		}

		return c.Send(adminPanelText, telebot.ModeMarkdown)
	}
}

// NewBanHandler adds a user id to the ban list. Banning an already banned
// id keeps a single record and still confirms.
func NewBanHandler(adminID int64, bans repository.BanRepository, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if !isAdmin(adminID, c) {
			logDeniedAdmin(log, c, "/ban")
			return nil
		}

		targetID, err := singleIDArg(c)
		if err != nil {
			return apperrors.NewValidationError("Usage: /ban <user_id>")
		}

		if err := bans.Ban(context.Background(), targetID); err != nil {
			return err
		}

		log.Info("user banned", slog.Int64("target_id", targetID))
		return c.Send(fmt.Sprintf("🚫 User %d banned", targetID))
	}
}

// NewUnbanHandler removes a user id from the ban list. Unbanning an id
// that is not banned is a no-op and still confirms.
func NewUnbanHandler(adminID int64, bans repository.BanRepository, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if !isAdmin(adminID, c) {
			logDeniedAdmin(log, c, "/unban")
			return nil
		}

		targetID, err := singleIDArg(c)
		if err != nil {
			return apperrors.NewValidationError("Usage: /unban <user_id>")
		}

		if err := bans.Unban(context.Background(), targetID); err != nil {
			return err
		}

		log.Info("user unbanned", slog.Int64("target_id", targetID))
		return c.Send(fmt.Sprintf("✅ User %d unbanned", targetID))
	}
}

// NewStatsHandler replies with aggregate usage numbers for the admin.
func NewStatsHandler(adminID int64, users repository.UserRepository, bans repository.BanRepository, audit repository.AuditRepository, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if !isAdmin(adminID, c) {
			logDeniedAdmin(log, c, "/stats")
			return nil
		}

		ctx := context.Background()

		userCount, err := users.Count(ctx)
		if err != nil {
			return err
		}

		banCount, err := bans.Count(ctx)
		if err != nil {
			return err
		}

		usageCount, err := audit.UsageCount(ctx)
		if err != nil {
			return err
		}

		topTools, err := audit.TopTools(ctx, 5)
		if err != nil {
			return err
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📊 *Bot Stats*\n\nUsers: %d\nBanned: %d\nTool activations: %d\n", userCount, banCount, usageCount)
		if len(topTools) > 0 {
			sb.WriteString("\nTop tools:\n")
			for _, usage := range topTools {
				fmt.Fprintf(&sb, "• %s — %d\n", usage.Tool, usage.Count)
			}
		}

		return c.Send(sb.String(), telebot.ModeMarkdown)
	}
}

// NewBroadcastHandler sends the given message to every registered user.
// Delivery failures (blocked bot, deleted account) are skipped and the
// final tally reports how many sends went through.
func NewBroadcastHandler(adminID int64, users repository.UserRepository, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if !isAdmin(adminID, c) {
			logDeniedAdmin(log, c, "/broadcast")
			return nil
		}

		message := strings.TrimSpace(strings.Join(c.Args(), " "))
		if message == "" {
			return apperrors.NewValidationError("Usage: /broadcast <message>")
		}

		ids, err := users.ListIDs(context.Background())
		if err != nil {
			return err
		}

		delivered := 0
		for _, id := range ids {
			if _, err := c.Bot().Send(&telebot.User{ID: id}, message); err != nil {
				log.Warn("broadcast delivery failed", slog.Int64("user_id", id), slog.Any("error", err))
				continue
			}
			delivered++
		}

		return c.Send(fmt.Sprintf("📣 Broadcast delivered to %d/%d users", delivered, len(ids)))
	}
}

// singleIDArg parses the single numeric argument of a ban style command.
func singleIDArg(c telebot.Context) (int64, error) {
	args := c.Args()
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one argument, got %d", len(args))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id: %w", err)
	}

	return id, nil
}

func logDeniedAdmin(log *slog.Logger, c telebot.Context, command string) {
	senderID := int64(0)
	if c != nil && c.Sender() != nil {
		senderID = c.Sender().ID
	}

	log.Warn("admin command denied", slog.String("command", command), slog.Int64("sender_id", senderID))
}
