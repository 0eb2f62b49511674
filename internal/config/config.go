// Package config loads the monitor configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SourceConfig holds log source settings
type SourceConfig struct {
	Path         string        `mapstructure:"path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	ReplayAll    bool          `mapstructure:"replay_all"`
	TailLines    int           `mapstructure:"tail_lines"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddress   string        `mapstructure:"listen_address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HistoryConfig holds hub history and subscriber queue caps
type HistoryConfig struct {
	MaxEvents int `mapstructure:"max_events"`
	MaxLines  int `mapstructure:"max_lines"`
	QueueSize int `mapstructure:"queue_size"`
}

// CorrelationConfig holds vehicle destruction correlation tuning
type CorrelationConfig struct {
	Horizon   time.Duration `mapstructure:"horizon"`
	Proximity time.Duration `mapstructure:"proximity"`
}

// DebugLogConfig holds the optional rotating debug log file settings
type DebugLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config represents the complete monitor configuration
type Config struct {
	Source      SourceConfig      `mapstructure:"source"`
	Server      ServerConfig      `mapstructure:"server"`
	History     HistoryConfig     `mapstructure:"history"`
	Correlation CorrelationConfig `mapstructure:"correlation"`
	DebugLog    DebugLogConfig    `mapstructure:"debug_log"`
	LogLevel    string            `mapstructure:"log_level"`
	LogFormat   string            `mapstructure:"log_format"`
}

// Load loads the configuration. An empty configPath loads pure defaults so the
// monitor can run from flags alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STARLOGS")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("source.poll_interval", "1s")
	v.SetDefault("source.replay_all", true)
	v.SetDefault("source.tail_lines", 100)
	v.SetDefault("server.listen_address", "127.0.0.1:5025")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("history.max_events", 500)
	v.SetDefault("history.max_lines", 1000)
	v.SetDefault("history.queue_size", 2000)
	v.SetDefault("correlation.horizon", "10s")
	v.SetDefault("correlation.proximity", "200ms")
	v.SetDefault("debug_log.enabled", false)
	v.SetDefault("debug_log.path", "starlogs-debug.log")
	v.SetDefault("debug_log.max_size_mb", 10)
	v.SetDefault("debug_log.max_backups", 3)
	v.SetDefault("debug_log.max_age_days", 7)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	if c.Source.PollInterval <= 0 {
		return fmt.Errorf("source.poll_interval must be positive")
	}
	if c.History.MaxEvents <= 0 || c.History.MaxLines <= 0 {
		return fmt.Errorf("history caps must be positive")
	}
	// A fresh subscriber's queue must hold the full history preload.
	if c.History.QueueSize < c.History.MaxEvents+c.History.MaxLines {
		return fmt.Errorf("history.queue_size must be at least max_events + max_lines (%d)",
			c.History.MaxEvents+c.History.MaxLines)
	}
	if c.Correlation.Horizon <= 0 || c.Correlation.Proximity <= 0 {
		return fmt.Errorf("correlation durations must be positive")
	}
	if c.Correlation.Proximity > c.Correlation.Horizon {
		return fmt.Errorf("correlation.proximity must not exceed correlation.horizon")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	return nil
}
