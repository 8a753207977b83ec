package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"QTRACE_DB_DRIVER", "QTRACE_DB", "QTRACE_POSTGRES_URL", "QTRACE_HTTP_ADDR",
		"QTRACE_LOG_LEVEL", "QTRACE_LOG_FORMAT", "QTRACE_PERSIST_TIMEOUT",
		"QTRACE_OTEL_ENDPOINT", "QTRACE_OTEL_ENABLED",
		"QTRACE_S3_ENDPOINT", "QTRACE_S3_ACCESS_KEY", "QTRACE_S3_SECRET_KEY",
		"QTRACE_S3_BUCKET", "QTRACE_S3_REGION", "QTRACE_S3_USE_SSL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "qtrace.db", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.PersistTimeout)
	assert.Equal(t, "qtrace-executions", cfg.Archive.Bucket)
	assert.False(t, cfg.Telemetry.Active())
	assert.False(t, cfg.Archive.Configured())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QTRACE_DB_DRIVER", "postgres")
	t.Setenv("QTRACE_POSTGRES_URL", "postgres://localhost/qtrace")
	t.Setenv("QTRACE_PERSIST_TIMEOUT", "250ms")
	t.Setenv("QTRACE_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("QTRACE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.PersistTimeout)
	assert.True(t, cfg.Telemetry.Active())
}

func TestOtelCanBeDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("QTRACE_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("QTRACE_OTEL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Active())
}

func TestValidate(t *testing.T) {
	base := Config{
		DBDriver:       DriverSQLite,
		DBPath:         "q.db",
		LogLevel:       "info",
		LogFormat:      "text",
		PersistTimeout: time.Second,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "QTRACE_DB_DRIVER"},
		{"postgres without url", func(c *Config) { c.DBDriver = DriverPostgres }, "QTRACE_POSTGRES_URL"},
		{"empty sqlite path", func(c *Config) { c.DBPath = " " }, "QTRACE_DB"},
		{"zero timeout", func(c *Config) { c.PersistTimeout = 0 }, "QTRACE_PERSIST_TIMEOUT"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "QTRACE_LOG_FORMAT"},
		{"archive without keys", func(c *Config) { c.Archive.Endpoint = "localhost:9000" }, "QTRACE_S3_ACCESS_KEY"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("nope")
	assert.Error(t, err)
}
