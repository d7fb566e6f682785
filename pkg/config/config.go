package config

import "time"

// Config holds runtime configuration for the aitoolsbox bot.
type Config struct {
	AppEnv string

	Bot       BotConfig       `mapstructure:"bot"`
	Ads       AdsConfig       `mapstructure:"ads"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Server    ServerConfig    `mapstructure:"server"`
	Report    ReportConfig    `mapstructure:"report"`
}

// BotConfig configures the Telegram transport and the admin identity.
type BotConfig struct {
	// Token is the bot credential. The process must not start without it.
	Token string `mapstructure:"token" validate:"required"`
	// AdminID is the administrator user id; 0 means "no admin" and every
	// admin command is silently ignored.
	AdminID int64 `mapstructure:"admin_id"`
	// ForceSubChannel optionally names a channel users must join before
	// tools unlock. Empty disables the check.
	ForceSubChannel string        `mapstructure:"force_sub_channel"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
}

// AdsConfig controls ad rotation on tool activations.
type AdsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Frequency shows an ad footer on every Nth activation per user.
	Frequency int `mapstructure:"frequency" validate:"min=1"`
}

// RateLimitConfig configures the per-user cooldown limiter.
type RateLimitConfig struct {
	Cooldown      time.Duration `mapstructure:"cooldown" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// SweepFactor evicts entries older than SweepFactor times the cooldown.
	SweepFactor int `mapstructure:"sweep_factor" validate:"min=1"`
}

// StorageConfig selects the relational store backend.
type StorageConfig struct {
	Dialect      string        `mapstructure:"dialect" validate:"oneof=sqlite postgres"`
	DSN          string        `mapstructure:"dsn" validate:"required"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" validate:"gt=0"`
}

// RedisConfig configures the optional Redis backend. Empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggerConfig configures slog output.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// File enables rotated file output when non-empty.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ServerConfig configures the ops HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ReportConfig configures the scheduled admin usage report.
type ReportConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
