// Package handlers contains the bot update handlers.
package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes a single bot update.
type Handler func(c telebot.Context) error

// CallbackHandler processes a callback query update.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(next Handler) Handler
