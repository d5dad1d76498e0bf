package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/classbell/internal/core/format"
	"github.com/colonyops/classbell/internal/core/styles"
)

// minInterval keeps a misconfigured poller from spinning.
const minInterval = time.Second

// Validate checks structural rules that need no I/O.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Notifications.Capacity < 1 {
		errs = errs.Append("notifications.capacity", fmt.Errorf("must be at least 1, got %d", c.Notifications.Capacity))
	}

	switch c.Notifications.Backend {
	case BackendJSONFile, BackendSQLite:
	default:
		errs = errs.Append("notifications.backend", fmt.Errorf("unknown backend %q (want %s or %s)", c.Notifications.Backend, BackendJSONFile, BackendSQLite))
	}

	if c.Reminders.Interval < minInterval {
		errs = errs.Append("reminders.interval", fmt.Errorf("must be at least %s, got %s", minInterval, c.Reminders.Interval))
	}
	if c.Reminders.LeadTime <= 0 {
		errs = errs.Append("reminders.lead_time", fmt.Errorf("must be positive, got %s", c.Reminders.LeadTime))
	}

	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must be between 0 and max_open_conns"))
	}
	if c.Bus.Buffer < 1 {
		errs = errs.Append("bus.buffer", fmt.Errorf("must be at least 1"))
	}
	if _, ok := styles.GetPalette(c.Theme); !ok {
		errs = errs.Append("theme", fmt.Errorf("unknown theme %q (available: %s)", c.Theme, strings.Join(styles.ThemeNames(), ", ")))
	}

	return errs.ToError()
}

// ValidateDeep runs Validate plus checks that touch the filesystem or
// locale data.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateFormat(),
	)
}

func (c *Config) validateFormat() error {
	if _, err := format.NewLocale(c.Format.Options()); err != nil {
		return criterio.NewFieldErrors("format", err)
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
