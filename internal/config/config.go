// Package config loads runtime settings for the lineup CLI. Values come from
// .lineup.yaml, LINEUP_* environment variables and bound CLI flags, in
// viper's usual precedence, on top of the defaults set here.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid indicates a setting with an unsupported value.
var ErrInvalid = errors.New("invalid configuration")

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// TelemetryConfig controls the JSONL sync event stream.
type TelemetryConfig struct {
	// Path of the JSONL file; empty disables telemetry.
	Path string `mapstructure:"path"`
}

// OrphansConfig tunes orphan detection.
type OrphansConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// ImportConfig tunes external schedule imports.
type ImportConfig struct {
	// DayBoundary is the "HH:MM" time of day a festival day starts.
	DayBoundary string `mapstructure:"day_boundary"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds all runtime configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Orphans   OrphansConfig   `mapstructure:"orphans"`
	Import    ImportConfig    `mapstructure:"import"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Verbose   bool            `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "lineup.db")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 28)
	viper.SetDefault("telemetry.path", "")
	viper.SetDefault("orphans.threshold", 0.6)
	viper.SetDefault("import.day_boundary", "06:00")
	viper.SetDefault("watch.debounce", "250ms")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and ranged settings.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: database.driver %q: %w", c.Database.Driver, ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q: %w", c.Log.Format, ErrInvalid)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q: %w", c.Log.Level, ErrInvalid)
	}
	if c.Orphans.Threshold <= 0 || c.Orphans.Threshold > 1 {
		return fmt.Errorf("config: orphans.threshold %v: %w", c.Orphans.Threshold, ErrInvalid)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("config: watch.debounce %v: %w", c.Watch.Debounce, ErrInvalid)
	}
	return nil
}
