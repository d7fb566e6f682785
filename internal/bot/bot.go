// Package bot wires the Telegram transport, the update router, and the
// handler set together.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/rhnyadav/aitoolsbox/internal/ads"
	"github.com/rhnyadav/aitoolsbox/internal/bot/handlers"
	"github.com/rhnyadav/aitoolsbox/internal/bot/keyboard"
	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
	"github.com/rhnyadav/aitoolsbox/internal/ratelimit"
	"github.com/rhnyadav/aitoolsbox/internal/repository"
	"github.com/rhnyadav/aitoolsbox/internal/session"
	"github.com/rhnyadav/aitoolsbox/internal/subscription"
	"github.com/rhnyadav/aitoolsbox/internal/tools"
	"github.com/rhnyadav/aitoolsbox/pkg/config"
)

// Deps bundles the application services the bot handlers depend on.
type Deps struct {
	Users    repository.UserRepository
	Bans     repository.BanRepository
	Audit    repository.AuditRepository
	Limiter  ratelimit.Limiter
	Sessions *session.Manager
	Ads      *ads.Rotator
}

// Bot wraps telebot.Bot with the router and handler dependencies.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        config.Config
	router     *Router
	keyboard   *keyboard.Builder
	errHandler *apperrors.Handler
	guard      *subscription.Guard
	deps       Deps
}

// New builds a telegram bot instance configured according to the
// application settings.
func New(cfg config.Config, log *slog.Logger, deps Deps) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token: cfg.Bot.Token,
		Poller: &telebot.LongPoller{
			Timeout: cfg.Bot.PollTimeout,
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		router:     NewRouter(log),
		keyboard:   keyboard.NewBuilder(log),
		errHandler: apperrors.NewHandler(log, cfg.Sentry.Enabled),
		guard:      subscription.NewGuard(tb, cfg.Bot.ForceSubChannel, log),
		deps:       deps,
	}

	b.setupRouter()
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations
// such as health checks and the report scheduler.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(MetricsMiddleware())

	adminID := b.cfg.Bot.AdminID

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.deps.Users, b.keyboard, b.log))
	b.router.RegisterCommand(CommandAdmin, handlers.NewAdminPanelHandler(adminID, b.log))
	b.router.RegisterCommand(CommandBan, handlers.NewBanHandler(adminID, b.deps.Bans, b.log))
	b.router.RegisterCommand(CommandUnban, handlers.NewUnbanHandler(adminID, b.deps.Bans, b.log))
	b.router.RegisterCommand(CommandStats, handlers.NewStatsHandler(adminID, b.deps.Users, b.deps.Bans, b.deps.Audit, b.log))
	b.router.RegisterCommand(CommandBroadcast, handlers.NewBroadcastHandler(adminID, b.deps.Users, b.log))

	toolHandler := handlers.NewToolSelectionHandler(handlers.ToolSelectionDeps{
		Bans:     b.deps.Bans,
		Limiter:  b.deps.Limiter,
		Sessions: b.deps.Sessions,
		Audit:    b.deps.Audit,
		Guard:    b.guard,
		Ads:      b.deps.Ads,
		Log:      b.log,
	})

	for _, btn := range tools.Buttons() {
		b.router.RegisterCallback(btn.Token, toolHandler)
	}

	// Unregistered tokens go through the same handler, which rejects them
	// with a validation error instead of staying silent.
	b.router.SetCallbackDefault(toolHandler)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
