package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qtrace/internal/config"
	"github.com/roach88/qtrace/internal/recorder"
	"github.com/roach88/qtrace/internal/store"
	"github.com/roach88/qtrace/internal/telemetry"
)

// serviceName identifies qtrace in exported traces.
const serviceName = "qtrace"

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Driver != "" {
		cfg.DBDriver = opts.Driver
	}
	if opts.Database != "" {
		if cfg.DBDriver == config.DriverPostgres {
			cfg.PostgresURL = opts.Database
		} else {
			cfg.DBPath = opts.Database
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// newLogger writes to w in the configured format. --verbose forces debug.
func newLogger(cfg config.Config, verbose bool, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openStore opens the configured backend.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	var (
		st  *store.Store
		err error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		st, err = store.OpenPostgres(ctx, store.PostgresConfig{URL: cfg.PostgresURL})
	default:
		st, err = store.Open(cfg.DBPath)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// setupTelemetry installs the tracer provider. Failures only disable
// tracing.
func setupTelemetry(ctx context.Context, cfg config.Config, logger *slog.Logger) func() {
	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
}

// startRecorder runs a recorder's writer loop in the background. The
// returned stop function drains queued writes and waits for the loop.
func startRecorder(ctx context.Context, st *store.Store, cfg config.Config, logger *slog.Logger) (*recorder.Recorder, func() error) {
	rec := recorder.New(st,
		recorder.WithLogger(logger),
		recorder.WithPersistTimeout(cfg.PersistTimeout),
	)
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	return rec, func() error {
		rec.Close()
		err := <-done
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
		return nil
	}
}
