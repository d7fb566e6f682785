// Package keyboard renders inline keyboards for the bot.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/rhnyadav/aitoolsbox/internal/tools"
)

// Builder creates inline keyboards.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// ToolMenu builds the main tool selection menu, one button per row in
// catalog order. Button callback data carries the bare tool token.
func (b *Builder) ToolMenu() *telebot.ReplyMarkup {
	buttons := tools.Buttons()

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = make([][]telebot.InlineButton, 0, len(buttons))
	for _, btn := range buttons {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{
			{
				Text: btn.Label,
				Data: btn.Token,
			},
		})
	}

	return markup
}
