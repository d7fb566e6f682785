package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/rhnyadav/aitoolsbox/internal/ads"
	"github.com/rhnyadav/aitoolsbox/internal/bot"
	"github.com/rhnyadav/aitoolsbox/internal/database"
	"github.com/rhnyadav/aitoolsbox/internal/health"
	"github.com/rhnyadav/aitoolsbox/internal/lifecycle"
	"github.com/rhnyadav/aitoolsbox/internal/ratelimit"
	"github.com/rhnyadav/aitoolsbox/internal/report"
	"github.com/rhnyadav/aitoolsbox/internal/repository"
	"github.com/rhnyadav/aitoolsbox/internal/session"
	"github.com/rhnyadav/aitoolsbox/pkg/config"
	"github.com/rhnyadav/aitoolsbox/pkg/graceful"
	"github.com/rhnyadav/aitoolsbox/pkg/logger"
	"github.com/rhnyadav/aitoolsbox/pkg/metrics"
)

// sessionMaxAge bounds how long an untouched tool selection survives.
const sessionMaxAge = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	log.Info("starting aitoolsbox bot",
		slog.String("env", cfg.AppEnv),
		slog.String("storage", cfg.Storage.Dialect),
		slog.Duration("cooldown", cfg.RateLimit.Cooldown),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Error("failed to init sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.Open(ctx, database.Dialect(cfg.Storage.Dialect), cfg.Storage.DSN, cfg.Storage.QueryTimeout, log)
	if err != nil {
		log.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.Init(ctx); err != nil {
		log.Error("failed to init schema", slog.Any("error", err))
		os.Exit(1)
	}

	users := repository.NewUserRepository(db, log)
	bans := repository.NewBanRepository(db, log)
	audit := repository.NewAuditRepository(db, log)

	var redisClient *redis.Client
	var limiter ratelimit.Limiter

	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to ping redis", slog.String("addr", cfg.Redis.Addr), slog.Any("error", err))
			os.Exit(1)
		}

		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Cooldown, log)
		log.Info("cooldown limiter backed by redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.Cooldown, log)
		limiter = memLimiter

		cleaner := ratelimit.NewCleaner(memLimiter, memLimiter, cfg.RateLimit.SweepInterval, cfg.RateLimit.SweepFactor, log)
		go cleaner.Run(ctx)
	}

	config.WatchCooldown(v, log, limiter.SetCooldown)

	sessions := session.NewManager()
	go sweepSessions(ctx, sessions, cfg.RateLimit.SweepInterval, log)

	rotator := ads.NewRotator(cfg.Ads.Enabled, cfg.Ads.Frequency, audit, log)

	b, err := bot.New(*cfg, log, bot.Deps{
		Users:    users,
		Bans:     bans,
		Audit:    audit,
		Limiter:  limiter,
		Sessions: sessions,
		Ads:      rotator,
	})
	if err != nil {
		log.Error("failed to build bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("store", health.NewStoreChecker(db))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}

	opsServer := graceful.NewOpsServer(cfg.Server.Addr, checker, log, cfg.Server.ShutdownTimeout)
	go func() {
		if err := opsServer.Run(ctx); err != nil {
			log.Error("ops server stopped with error", slog.Any("error", err))
		}
	}()

	var memLimiter metrics.Sized
	if sized, ok := limiter.(metrics.Sized); ok {
		memLimiter = sized
	}
	go metrics.NewCollector(sessions, memLimiter).Run(ctx)

	var reporter *report.Scheduler
	if cfg.Report.Enabled {
		reporter = report.NewScheduler(b.Telebot(), cfg.Bot.AdminID, users, bans, audit, log)
		if err := reporter.Start(cfg.Report.Schedule); err != nil {
			log.Error("failed to start report scheduler", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("store", func(context.Context) error {
		return db.Close()
	})
	if redisClient != nil {
		shutdown.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	if reporter != nil {
		shutdown.Register("report", reporter.Stop)
	}

	go b.Start()
	log.Info("bot is running")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("bot stopped")
}

func sweepSessions(ctx context.Context, sessions *session.Manager, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := sessions.Sweep(sessionMaxAge); evicted > 0 {
				log.Info("stale sessions evicted", slog.Int("count", evicted))
			}
		}
	}
}
