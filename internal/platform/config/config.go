package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration, grouped per concern.
type Config struct {
	Postgres PostgresConfig
	Redis    RedisConfig
	Discord  DiscordConfig
	Bridge   BridgeConfig
	Approval ApprovalConfig
	Ops      OpsConfig
	Log      LogConfig
	Trace    TraceConfig
}

// PostgresConfig covers both the pooled record store and the dedicated
// LISTEN connection (same DSN, separate connection).
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; an empty URL keeps locking and dedupe in-process.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DiscordConfig holds the bot credentials. ServerAddress is the game server
// players are told to join when completing a registration.
type DiscordConfig struct {
	Token         string
	GuildID       string
	ServerAddress string
	// RequestsPerSecond and RequestBurst throttle REST calls made by the
	// approval workflow; pollers call the API twice per cycle each.
	RequestsPerSecond int
	RequestBurst      int
}

// BridgeConfig tunes the change-channel consumer.
type BridgeConfig struct {
	Channel          string
	QueueCapacity    int
	ReconnectBackoff time.Duration
	EnqueueRetry     time.Duration
	IdleDelay        time.Duration
}

// ApprovalConfig tunes the interactive approval workflow.
type ApprovalConfig struct {
	Window            time.Duration
	Linger            time.Duration
	PollInterval      time.Duration
	ReactionThreshold int
	ApproveMarker     string
	DenyMarker        string
	Workers           int
	DedupeTTL         time.Duration
	LockTTL           time.Duration
}

type OpsConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string
	Format string
}

// TraceConfig enables the stdout span exporter. Tracing is a no-op otherwise.
type TraceConfig struct {
	Stdout bool
}

// Defaults returns the configuration used when no environment overrides are set.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Discord: DiscordConfig{
			ServerAddress:     "localhost",
			RequestsPerSecond: 25,
			RequestBurst:      5,
		},
		Bridge: BridgeConfig{
			Channel:          "bot_updates",
			QueueCapacity:    100,
			ReconnectBackoff: 5 * time.Second,
			EnqueueRetry:     time.Second,
			IdleDelay:        500 * time.Millisecond,
		},
		Approval: ApprovalConfig{
			Window:            30 * time.Second,
			Linger:            30 * time.Second,
			PollInterval:      time.Second,
			ReactionThreshold: 1,
			ApproveMarker:     "✅",
			DenyMarker:        "❌",
			Workers:           1,
			DedupeTTL:         24 * time.Hour,
			LockTTL:           10 * time.Second,
		},
		Ops: OpsConfig{Addr: ":9090"},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	var errs []error

	cfg.Postgres.URL = os.Getenv("DATABASE_URL")
	cfg.Postgres.MaxOpenConns = intEnv("DATABASE_MAX_OPEN_CONNS", cfg.Postgres.MaxOpenConns, &errs)
	cfg.Postgres.MaxIdleConns = intEnv("DATABASE_MAX_IDLE_CONNS", cfg.Postgres.MaxIdleConns, &errs)
	cfg.Postgres.ConnMaxLifetime = durationEnv("DATABASE_CONN_MAX_LIFETIME", cfg.Postgres.ConnMaxLifetime, &errs)

	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Redis.PoolSize = intEnv("REDIS_POOL_SIZE", cfg.Redis.PoolSize, &errs)

	cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")
	cfg.Discord.GuildID = os.Getenv("GUILD_ID")
	cfg.Discord.ServerAddress = stringEnv("MINECRAFT_SERVER_ADDRESS", cfg.Discord.ServerAddress)
	cfg.Discord.RequestsPerSecond = intEnv("DISCORD_REQUESTS_PER_SECOND", cfg.Discord.RequestsPerSecond, &errs)
	cfg.Discord.RequestBurst = intEnv("DISCORD_REQUEST_BURST", cfg.Discord.RequestBurst, &errs)

	cfg.Bridge.Channel = stringEnv("LISTEN_CHANNEL", cfg.Bridge.Channel)
	cfg.Bridge.QueueCapacity = intEnv("QUEUE_CAPACITY", cfg.Bridge.QueueCapacity, &errs)
	cfg.Bridge.ReconnectBackoff = durationEnv("RECONNECT_BACKOFF", cfg.Bridge.ReconnectBackoff, &errs)
	cfg.Bridge.EnqueueRetry = durationEnv("ENQUEUE_RETRY_INTERVAL", cfg.Bridge.EnqueueRetry, &errs)
	cfg.Bridge.IdleDelay = durationEnv("IDLE_DELAY", cfg.Bridge.IdleDelay, &errs)

	cfg.Approval.Window = durationEnv("APPROVAL_WINDOW", cfg.Approval.Window, &errs)
	cfg.Approval.Linger = durationEnv("APPROVAL_LINGER", cfg.Approval.Linger, &errs)
	cfg.Approval.PollInterval = durationEnv("APPROVAL_POLL_INTERVAL", cfg.Approval.PollInterval, &errs)
	cfg.Approval.ReactionThreshold = intEnv("APPROVAL_REACTION_THRESHOLD", cfg.Approval.ReactionThreshold, &errs)
	cfg.Approval.ApproveMarker = stringEnv("APPROVE_MARKER", cfg.Approval.ApproveMarker)
	cfg.Approval.DenyMarker = stringEnv("DENY_MARKER", cfg.Approval.DenyMarker)
	cfg.Approval.Workers = intEnv("APPROVAL_WORKERS", cfg.Approval.Workers, &errs)
	cfg.Approval.DedupeTTL = durationEnv("DEDUPE_TTL", cfg.Approval.DedupeTTL, &errs)
	cfg.Approval.LockTTL = durationEnv("IDENTITY_LOCK_TTL", cfg.Approval.LockTTL, &errs)

	cfg.Ops.Addr = stringEnv("OPS_ADDR", cfg.Ops.Addr)
	cfg.Log.Level = stringEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = stringEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Trace.Stdout = boolEnv("TRACE_STDOUT", cfg.Trace.Stdout, &errs)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants the runtime relies on.
func (c Config) Validate() error {
	var errs []error
	if c.Postgres.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required"))
	}
	if c.Bridge.Channel == "" {
		errs = append(errs, errors.New("LISTEN_CHANNEL must not be empty"))
	}
	if c.Bridge.QueueCapacity <= 0 {
		errs = append(errs, errors.New("QUEUE_CAPACITY must be positive"))
	}
	if c.Approval.Workers <= 0 {
		errs = append(errs, errors.New("APPROVAL_WORKERS must be positive"))
	}
	if c.Approval.Window <= 0 || c.Approval.PollInterval <= 0 {
		errs = append(errs, errors.New("APPROVAL_WINDOW and APPROVAL_POLL_INTERVAL must be positive"))
	}
	if c.Discord.RequestsPerSecond <= 0 || c.Discord.RequestBurst <= 0 {
		errs = append(errs, errors.New("DISCORD_REQUESTS_PER_SECOND and DISCORD_REQUEST_BURST must be positive"))
	}
	if c.Approval.Linger < 0 {
		errs = append(errs, errors.New("APPROVAL_LINGER must not be negative"))
	}
	if c.Approval.ReactionThreshold < 0 {
		errs = append(errs, errors.New("APPROVAL_REACTION_THRESHOLD must not be negative"))
	}
	if c.Approval.ApproveMarker == "" || c.Approval.DenyMarker == "" || c.Approval.ApproveMarker == c.Approval.DenyMarker {
		errs = append(errs, errors.New("APPROVE_MARKER and DENY_MARKER must be distinct and non-empty"))
	}
	return errors.Join(errs...)
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func boolEnv(key string, fallback bool, errs *[]error) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
