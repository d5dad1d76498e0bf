// Package config handles configuration loading and validation for classbell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/classbell/internal/core/format"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/core/styles"
)

// Backend names for notification persistence.
const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Notifications NotificationsConfig `yaml:"notifications"`
	Reminders     RemindersConfig     `yaml:"reminders"`
	Format        FormatConfig        `yaml:"format"`
	Database      DatabaseConfig      `yaml:"database"`
	Server        ServerConfig        `yaml:"server"`
	Bus           BusConfig           `yaml:"bus"`
	Theme         string              `yaml:"theme"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// NotificationsConfig controls the per-user notification log.
type NotificationsConfig struct {
	Capacity int    `yaml:"capacity"`
	Backend  string `yaml:"backend"` // jsonfile or sqlite
	Watch    *bool  `yaml:"watch"`   // refresh from disk on external writes (jsonfile only)
}

// WatchEnabled reports whether external writes should be picked up. Defaults to true.
func (n NotificationsConfig) WatchEnabled() bool {
	return n.Watch == nil || *n.Watch
}

// RemindersConfig controls the lesson proximity poller.
type RemindersConfig struct {
	Interval time.Duration `yaml:"interval"`
	LeadTime time.Duration `yaml:"lead_time"`
}

// FormatConfig controls how dates and amounts render in notification text.
type FormatConfig struct {
	Locale     string `yaml:"locale"`
	Currency   string `yaml:"currency"`
	DateLayout string `yaml:"date_layout"`
	Timezone   string `yaml:"timezone"`
}

// Options converts the config into formatter options.
func (f FormatConfig) Options() format.Options {
	return format.Options{
		Locale:     f.Locale,
		Currency:   f.Currency,
		DateLayout: f.DateLayout,
		Timezone:   f.Timezone,
	}
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// BusConfig sizes the domain event bus.
type BusConfig struct {
	Buffer int `yaml:"buffer"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	fo := format.DefaultOptions()
	return Config{
		Notifications: NotificationsConfig{
			Capacity: notify.MaxNotifications,
			Backend:  BackendJSONFile,
		},
		Reminders: RemindersConfig{
			Interval: 60 * time.Second,
			LeadTime: 10 * time.Minute,
		},
		Format: FormatConfig{
			Locale:     fo.Locale,
			Currency:   fo.Currency,
			DateLayout: fo.DateLayout,
			Timezone:   fo.Timezone,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:7420",
			AllowedOrigins: []string{"*"},
		},
		Bus: BusConfig{
			Buffer: 256,
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Notifications.Capacity == 0 {
		c.Notifications.Capacity = defaults.Notifications.Capacity
	}
	if c.Notifications.Backend == "" {
		c.Notifications.Backend = defaults.Notifications.Backend
	}
	if c.Reminders.Interval == 0 {
		c.Reminders.Interval = defaults.Reminders.Interval
	}
	if c.Reminders.LeadTime == 0 {
		c.Reminders.LeadTime = defaults.Reminders.LeadTime
	}
	if c.Format.Locale == "" {
		c.Format.Locale = defaults.Format.Locale
	}
	if c.Format.Currency == "" {
		c.Format.Currency = defaults.Format.Currency
	}
	if c.Format.DateLayout == "" {
		c.Format.DateLayout = defaults.Format.DateLayout
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Bus.Buffer == 0 {
		c.Bus.Buffer = defaults.Bus.Buffer
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// NotificationsDir returns the directory holding per-user JSON notification logs.
func (c *Config) NotificationsDir() string {
	return filepath.Join(c.DataDir, "notifications")
}
