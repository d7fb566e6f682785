package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/rhnyadav/aitoolsbox/internal/bot/keyboard"
	"github.com/rhnyadav/aitoolsbox/internal/repository"
)

const welcomeText = "👋 *Welcome to AI Tools + Downloader FREE Bot*\n\n" +
	"✅ Unlimited Free Tools\n" +
	"⚡ Fast & Secure\n" +
	"🚫 No Payment Required\n\n" +
	"👇 Select a tool below"

// NewStartHandler registers the sender and shows the tool menu. Sending
// /start again keeps the original registration record and simply re-sends
// the menu.
func NewStartHandler(users repository.UserRepository, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("start handler invoked without sender")
			return nil
		}

		sender := c.Sender()
		if err := users.Upsert(context.Background(), sender.ID, sender.Username, sender.FirstName); err != nil {
			return err
		}

		return c.Send(welcomeText, kb.ToolMenu(), telebot.ModeMarkdown)
	}
}
