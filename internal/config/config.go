// Package config reads gizmo's runtime settings from the environment.
//
// Every setting has a default; command-line flags override the values loaded
// here.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvDatabase        = "GIZMO_DATABASE"
	EnvAddr            = "GIZMO_ADDR"
	EnvShutdownTimeout = "GIZMO_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "GIZMO_LOG_LEVEL"
	EnvHistoryLimit    = "GIZMO_HISTORY_LIMIT"
)

// Defaults.
const (
	DefaultDatabase        = "gizmo.db"
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultHistoryLimit    = 100
)

// Config holds process-wide settings.
type Config struct {
	// Database is a SQLite path or a postgres:// DSN.
	Database string

	// Addr is the HTTP listen address for `gizmo serve`.
	Addr string

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// HistoryLimit caps `gizmo history` output. 0 means unlimited.
	HistoryLimit int
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		Database:        DefaultDatabase,
		Addr:            DefaultAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
		HistoryLimit:    DefaultHistoryLimit,
	}
}

// FromEnv loads a Config from the environment and validates it.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.Database = String(EnvDatabase, cfg.Database)
	cfg.Addr = String(EnvAddr, cfg.Addr)
	cfg.LogLevel = String(EnvLogLevel, cfg.LogLevel)

	var err error
	if cfg.ShutdownTimeout, err = Duration(EnvShutdownTimeout, cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit, err = Int(EnvHistoryLimit, cfg.HistoryLimit); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDatabase))
	}
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAddr))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", EnvHistoryLimit, c.HistoryLimit))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the slog level for LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps a level name to a slog.Level. Matching is case-insensitive.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s: unknown level %q", EnvLogLevel, name)
	}
	return lvl, nil
}
