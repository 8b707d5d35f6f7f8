package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/convert"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/security"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv     string
	LogLevel   string
	LogFormat  string
	ConfigFile string

	// Database. An empty DatabaseURL selects local SQLite mode.
	DatabaseURL      string
	DatabaseDriver   string
	SQLitePath       string
	DatabaseMaxConns int

	// Redis holds preferences; empty falls back to memory in development.
	RedisURL       string
	RedisNamespace string

	// Event bus for session notifications: amqp:// or nats://.
	EventBusURL      string
	EventBusExchange string

	// Outbox relaying events to the broker.
	OutboxPollInterval time.Duration
	OutboxMaxRetries   int

	MetricsAddr string

	// Timer
	TickInterval time.Duration

	// Resilience
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration
	JournalRetryInterval    time.Duration
	JournalRetryBurst       int

	// Preference defaults
	FocusMinutes            int
	ShortBreakMinutes       int
	LongBreakMinutes        int
	SessionsBeforeLongBreak int
	AudioTrack              string
	Volume                  int
	TreeType                string

	// Analytics
	DailyFocusGoalMinutes int
	TrendsLookbackDays    int
	ScoreWeightsJSON      string
}

// DefaultScoreWeights is the JSON form of the default productivity weights.
const DefaultScoreWeights = `{"completion_rate":0.5,"sessions_completed":0.3,"focus_duration":0.2}`

// Load loads configuration from .env, the optional YAML file named by
// FOCUSFLOW_CONFIG (or ~/.focusflow/config.yaml) and the environment.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile is Load with an explicit YAML path. An explicit path must
// exist; the default path is optional. Environment variables override the
// file.
func LoadWithFile(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("FOCUSFLOW_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigPath()
	}

	file, err := loadFile(path, explicit)
	if err != nil {
		return nil, err
	}
	r := reader{file: file}

	cfg := &Config{
		AppEnv:     r.getEnv("APP_ENV", "development"),
		LogLevel:   r.getEnv("LOG_LEVEL", "warn"),
		LogFormat:  r.getEnv("LOG_FORMAT", "text"),
		ConfigFile: path,

		DatabaseURL:      r.getEnv("DATABASE_URL", ""),
		DatabaseDriver:   r.getEnv("DATABASE_DRIVER", "auto"),
		SQLitePath:       r.getEnv("SQLITE_PATH", ""),
		DatabaseMaxConns: r.getIntEnv("DATABASE_MAX_CONNS", 4),

		RedisURL:       r.getEnv("REDIS_URL", ""),
		RedisNamespace: r.getEnv("REDIS_NAMESPACE", "focusflow"),

		EventBusURL:      r.getEnv("EVENTBUS_URL", ""),
		EventBusExchange: r.getEnv("EVENTBUS_EXCHANGE", "focusflow.events"),

		OutboxPollInterval: r.getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxMaxRetries:   r.getIntEnv("OUTBOX_MAX_RETRIES", 5),

		MetricsAddr: r.getEnv("METRICS_ADDR", ""),

		TickInterval: r.getDurationEnv("TIMER_TICK_INTERVAL", time.Second),

		BreakerFailureThreshold: convert.IntToUint32Clamped(r.getIntEnv("BREAKER_FAILURE_THRESHOLD", 5)),
		BreakerTimeout:          r.getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),
		JournalRetryInterval:    r.getDurationEnv("JOURNAL_RETRY_INTERVAL", 5*time.Second),
		JournalRetryBurst:       r.getIntEnv("JOURNAL_RETRY_BURST", 3),

		FocusMinutes:            r.getIntEnv("FOCUS_MINUTES", 25),
		ShortBreakMinutes:       r.getIntEnv("SHORT_BREAK_MINUTES", 5),
		LongBreakMinutes:        r.getIntEnv("LONG_BREAK_MINUTES", 15),
		SessionsBeforeLongBreak: r.getIntEnv("SESSIONS_BEFORE_LONG_BREAK", 4),
		AudioTrack:              r.getEnv("AUDIO_TRACK", "nature"),
		Volume:                  r.getIntEnv("AUDIO_VOLUME", 50),
		TreeType:                r.getEnv("TREE_TYPE", "oak"),

		DailyFocusGoalMinutes: r.getIntEnv("DAILY_FOCUS_GOAL_MINUTES", 120),
		TrendsLookbackDays:    r.getIntEnv("TRENDS_LOOKBACK_DAYS", 14),
		ScoreWeightsJSON:      r.getEnv("PRODUCTIVITY_SCORE_WEIGHTS", DefaultScoreWeights),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise break the timer or analytics.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TIMER_TICK_INTERVAL must be positive, got %s", c.TickInterval))
	}
	if c.BreakerFailureThreshold == 0 {
		errs = append(errs, errors.New("BREAKER_FAILURE_THRESHOLD must be at least 1"))
	}
	if c.JournalRetryInterval <= 0 {
		errs = append(errs, errors.New("JOURNAL_RETRY_INTERVAL must be positive"))
	}
	if c.DailyFocusGoalMinutes <= 0 {
		errs = append(errs, errors.New("DAILY_FOCUS_GOAL_MINUTES must be positive"))
	}
	if c.TrendsLookbackDays <= 0 {
		errs = append(errs, errors.New("TRENDS_LOOKBACK_DAYS must be positive"))
	}
	switch c.DatabaseDriver {
	case "", "auto", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode reports whether sessions are kept in the local SQLite file.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == "" || c.DatabaseDriver == "sqlite"
}

// DefaultConfigPath is ~/.focusflow/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".focusflow", "config.yaml")
}

func loadFile(path string, required bool) (*koanf.Koanf, error) {
	content, err := security.SafeReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return k, nil
}

// reader resolves a key from the environment first, then from the YAML
// file where keys are the lower-cased variable names (daily_focus_goal_minutes).
type reader struct {
	file *koanf.Koanf
}

func (r reader) lookup(key string) (string, bool) {
	if value := os.Getenv(key); value != "" {
		return value, true
	}
	if r.file != nil {
		fileKey := strings.ToLower(key)
		if r.file.Exists(fileKey) {
			return r.file.String(fileKey), true
		}
	}
	return "", false
}

func (r reader) getEnv(key, defaultValue string) string {
	if value, ok := r.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (r reader) getIntEnv(key string, defaultValue int) int {
	if value, ok := r.lookup(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func (r reader) getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, ok := r.lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
