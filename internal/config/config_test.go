package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvDatabase, "postgres://gizmo@localhost/gizmo")
	t.Setenv(EnvAddr, "127.0.0.1:9090")
	t.Setenv(EnvShutdownTimeout, "3s")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvHistoryLimit, "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Database:        "postgres://gizmo@localhost/gizmo",
		Addr:            "127.0.0.1:9090",
		ShutdownTimeout: 3 * time.Second,
		LogLevel:        "DEBUG",
		HistoryLimit:    0,
	}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestFromEnv_ParseErrors(t *testing.T) {
	t.Setenv(EnvHistoryLimit, "lots")
	_, err := FromEnv()
	assert.ErrorContains(t, err, EnvHistoryLimit)
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Config{
		Database:        "",
		Addr:            " ",
		ShutdownTimeout: 0,
		LogLevel:        "loud",
		HistoryLimit:    -1,
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{EnvDatabase, EnvAddr, EnvShutdownTimeout, EnvHistoryLimit, `"loud"`} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "verbose"}.Level())
}
