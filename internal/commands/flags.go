package commands

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/classbell/internal/core/config"
)

// ErrNoUser is returned by commands that act on one user's notifications
// when no user was given.
var ErrNoUser = errors.New("no user given; pass --user or set CLASSBELL_USER")

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	User       string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

func (f *Flags) user() (string, error) {
	if f.User == "" {
		return "", ErrNoUser
	}
	return f.User, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "classbell", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "classbell")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/classbell/classbell.log
// On Linux: $XDG_STATE_HOME/classbell/classbell.log
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "classbell", "classbell.log")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "classbell", "classbell.log")
	}
	return filepath.Join(home, ".local", "state", "classbell", "classbell.log")
}
