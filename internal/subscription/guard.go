// Package subscription gates tool access behind channel membership when a
// force-subscribe channel is configured.
package subscription

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// MemberChecker abstracts the Telegram membership lookup.
type MemberChecker interface {
	ChatMemberOf(chat, user telebot.Recipient) (*telebot.ChatMember, error)
}

// Guard checks that a user is subscribed to the configured channel.
// An empty channel disables the guard entirely.
type Guard struct {
	checker MemberChecker
	channel string
	log     *slog.Logger
}

// NewGuard constructs a Guard for the given channel identifier
// (e.g. "@mychannel"). A nil checker or empty channel yields a guard
// that admits everyone.
func NewGuard(checker MemberChecker, channel string, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}

	return &Guard{
		checker: checker,
		channel: channel,
		log:     log,
	}
}

// Enabled reports whether the guard actually checks anything.
func (g *Guard) Enabled() bool {
	return g != nil && g.channel != "" && g.checker != nil
}

// Channel returns the configured channel identifier.
func (g *Guard) Channel() string {
	if g == nil {
		return ""
	}
	return g.channel
}

// Allowed reports whether user may use the tools. Lookup failures admit
// the user: the guard must not turn a Telegram API hiccup into a lockout.
func (g *Guard) Allowed(user *telebot.User) bool {
	if !g.Enabled() || user == nil {
		return true
	}

	member, err := g.checker.ChatMemberOf(channelRecipient(g.channel), user)
	if err != nil {
		g.log.Warn("subscription check failed",
			slog.Int64("user_id", user.ID),
			slog.String("channel", g.channel),
			slog.Any("error", err),
		)
		return true
	}

	switch member.Role {
	case telebot.Creator, telebot.Administrator, telebot.Member, telebot.Restricted:
		return true
	default:
		return false
	}
}

// channelRecipient lets a "@channel" identifier act as a telebot
// recipient without resolving it to a numeric chat id first.
type channelRecipient string

func (c channelRecipient) Recipient() string {
	return string(c)
}
