package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Bounce   BounceConfig   `yaml:"bounce"`
	Pending  PendingConfig  `yaml:"pending"`
	Notices  NoticesConfig  `yaml:"notices"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis configuration for the message queues and locks
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BounceConfig holds the site-wide bounce processing defaults. A list's
// own policy, where set, overrides these.
type BounceConfig struct {
	ScoreThreshold   float64 `yaml:"score_threshold"`
	StaleAfterDays   int     `yaml:"stale_after_days"`
	DisabledWarnings int     `yaml:"disabled_warnings"`
	WarningDays      int     `yaml:"warning_days"`
}

// StaleAfter returns the staleness window as a duration
func (c BounceConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterDays) * 24 * time.Hour
}

// WarningInterval returns the gap between disabled warnings as a duration
func (c BounceConfig) WarningInterval() time.Duration {
	return time.Duration(c.WarningDays) * 24 * time.Hour
}

// PendingConfig holds pending token store configuration
type PendingConfig struct {
	LifetimeDays       int `yaml:"lifetime_days"`
	TokenAttempts      int `yaml:"token_attempts"`
	EvictIntervalHours int `yaml:"evict_interval_hours"`
}

// Lifetime returns the default token lifetime as a duration
func (c PendingConfig) Lifetime() time.Duration {
	return time.Duration(c.LifetimeDays) * 24 * time.Hour
}

// EvictInterval returns how often the evictor sweeps expired tokens
func (c PendingConfig) EvictInterval() time.Duration {
	return time.Duration(c.EvictIntervalHours) * time.Hour
}

// NoticesConfig holds the notice composer's external surface: where
// confirmation and option links point, and who signs owner notices.
type NoticesConfig struct {
	ConfirmBaseURL string `yaml:"confirm_base_url"`
	OptionsBaseURL string `yaml:"options_base_url"`
	SiteOwner      string `yaml:"site_owner"`
	SweepHours     int    `yaml:"sweep_hours"`
}

// SweepInterval returns how often the disabled-member warning sweep runs
func (c NoticesConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepHours) * time.Hour
}

// WorkerConfig holds queue runner configuration
type WorkerConfig struct {
	PopTimeoutSeconds  int `yaml:"pop_timeout_seconds"`
	ListLockTTLSeconds int `yaml:"list_lock_ttl_seconds"`
}

// PopTimeout returns the blocking queue pop timeout as a duration
func (c WorkerConfig) PopTimeout() time.Duration {
	return time.Duration(c.PopTimeoutSeconds) * time.Second
}

// ListLockTTL returns the per-list processing lock TTL as a duration
func (c WorkerConfig) ListLockTTL() time.Duration {
	return time.Duration(c.ListLockTTLSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Bounce.ScoreThreshold == 0 {
		cfg.Bounce.ScoreThreshold = 5.0
	}
	if cfg.Bounce.StaleAfterDays == 0 {
		cfg.Bounce.StaleAfterDays = 7
	}
	if cfg.Bounce.DisabledWarnings == 0 {
		cfg.Bounce.DisabledWarnings = 3
	}
	if cfg.Bounce.WarningDays == 0 {
		cfg.Bounce.WarningDays = 7
	}
	if cfg.Pending.LifetimeDays == 0 {
		cfg.Pending.LifetimeDays = 3
	}
	if cfg.Pending.TokenAttempts == 0 {
		cfg.Pending.TokenAttempts = 3
	}
	if cfg.Pending.EvictIntervalHours == 0 {
		cfg.Pending.EvictIntervalHours = 24
	}
	if cfg.Notices.SweepHours == 0 {
		cfg.Notices.SweepHours = 24
	}
	if cfg.Worker.PopTimeoutSeconds == 0 {
		cfg.Worker.PopTimeoutSeconds = 5
	}
	if cfg.Worker.ListLockTTLSeconds == 0 {
		cfg.Worker.ListLockTTLSeconds = 60
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if v := os.Getenv("CONFIRM_BASE_URL"); v != "" {
		cfg.Notices.ConfirmBaseURL = v
	}
	if v := os.Getenv("OPTIONS_BASE_URL"); v != "" {
		cfg.Notices.OptionsBaseURL = v
	}
	if v := os.Getenv("SITE_OWNER"); v != "" {
		cfg.Notices.SiteOwner = v
	}

	return cfg, nil
}
