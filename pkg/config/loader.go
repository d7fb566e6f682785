// Package config provides configuration loading and validation utilities.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and environment
// variables, validates it, and returns the resulting Config. A missing
// bot token is a fatal configuration error.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// env files are optional
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvAliases(v)

	if err := v.ReadInConfig(); err != nil {
		// The YAML file is optional; env-only deployments are supported.
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

// WatchCooldown re-reads the cooldown window whenever the config file
// changes and hands the new value to apply.
func WatchCooldown(v *viper.Viper, log *slog.Logger, apply func(time.Duration)) {
	if v == nil || apply == nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cooldown := v.GetDuration("ratelimit.cooldown")
		if cooldown <= 0 {
			return
		}

		if log != nil {
			log.Info("config changed, applying new cooldown",
				slog.String("file", e.Name),
				slog.Duration("cooldown", cooldown),
			)
		}

		apply(cooldown)
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.admin_id", 0)
	v.SetDefault("bot.poll_timeout", "10s")
	v.SetDefault("ads.enabled", true)
	v.SetDefault("ads.frequency", 3)
	v.SetDefault("ratelimit.cooldown", "6s")
	v.SetDefault("ratelimit.sweep_interval", "1m")
	v.SetDefault("ratelimit.sweep_factor", 10)
	v.SetDefault("storage.dialect", "sqlite")
	v.SetDefault("storage.dsn", "bot.db")
	v.SetDefault("storage.query_timeout", "5s")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 28)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("report.enabled", true)
	v.SetDefault("report.schedule", "0 9 * * *")
}

// bindEnvAliases keeps the historical flat environment names working
// alongside the dotted keys.
func bindEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("bot.token", "BOT_TOKEN")
	_ = v.BindEnv("bot.admin_id", "ADMIN_ID", "BOT_ADMIN_ID")
	_ = v.BindEnv("bot.force_sub_channel", "FORCE_SUB_CHANNEL")
	_ = v.BindEnv("ads.enabled", "ADS_ENABLED")
}
