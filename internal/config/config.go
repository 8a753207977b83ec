// Package config loads qtrace settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every environment-controlled setting.
type Config struct {
	DBDriver       string        `env:"QTRACE_DB_DRIVER"       envDefault:"sqlite"`
	DBPath         string        `env:"QTRACE_DB"              envDefault:"qtrace.db"`
	PostgresURL    string        `env:"QTRACE_POSTGRES_URL"`
	HTTPAddr       string        `env:"QTRACE_HTTP_ADDR"       envDefault:":8080"`
	LogLevel       string        `env:"QTRACE_LOG_LEVEL"       envDefault:"info"`
	LogFormat      string        `env:"QTRACE_LOG_FORMAT"      envDefault:"text"`
	PersistTimeout time.Duration `env:"QTRACE_PERSIST_TIMEOUT" envDefault:"10s"`

	Telemetry Telemetry
	Archive   Archive
}

// Telemetry configures OpenTelemetry export. Tracing is off unless an
// endpoint is set.
type Telemetry struct {
	Endpoint string `env:"QTRACE_OTEL_ENDPOINT"`
	Enabled  bool   `env:"QTRACE_OTEL_ENABLED" envDefault:"true"`
}

// Active reports whether spans should be exported.
func (t Telemetry) Active() bool {
	return t.Enabled && t.Endpoint != ""
}

// Archive configures the S3-compatible snapshot bucket.
type Archive struct {
	Endpoint  string `env:"QTRACE_S3_ENDPOINT"`
	AccessKey string `env:"QTRACE_S3_ACCESS_KEY"`
	SecretKey string `env:"QTRACE_S3_SECRET_KEY"`
	Bucket    string `env:"QTRACE_S3_BUCKET"     envDefault:"qtrace-executions"`
	Region    string `env:"QTRACE_S3_REGION"`
	UseSSL    bool   `env:"QTRACE_S3_USE_SSL"    envDefault:"true"`
}

// Configured reports whether an archive endpoint was given.
func (a Archive) Configured() bool {
	return a.Endpoint != ""
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("QTRACE_DB must not be empty for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.PostgresURL) == "" {
			return fmt.Errorf("QTRACE_POSTGRES_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown QTRACE_DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverSQLite, DriverPostgres)
	}
	if c.PersistTimeout <= 0 {
		return fmt.Errorf("QTRACE_PERSIST_TIMEOUT must be positive, got %s", c.PersistTimeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown QTRACE_LOG_FORMAT %q (want text or json)", c.LogFormat)
	}
	if c.Archive.Configured() && (c.Archive.AccessKey == "" || c.Archive.SecretKey == "") {
		return fmt.Errorf("QTRACE_S3_ACCESS_KEY and QTRACE_S3_SECRET_KEY are required with QTRACE_S3_ENDPOINT")
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
