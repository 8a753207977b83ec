package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/httpapi"
	"github.com/roach88/qtrace/internal/service"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string // overrides QTRACE_HTTP_ADDR
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP JSON API",
		Long: `Serve executions, graphs, replays and comparisons over HTTP, and
accept new recordings on POST /api/executions.

Runs until interrupted. Queued recordings are written before exit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $QTRACE_HTTP_ADDR)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}
	logger := newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
	defer setupTelemetry(ctx, cfg, logger)()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// The writer loop outlives ctx so queued recordings drain on shutdown.
	rec, stopRecorder := startRecorder(context.WithoutCancel(ctx), st, cfg, logger)
	svc := service.New(st, service.WithRecorder(rec))
	handler := httpapi.Wrap(logger, httpapi.NewHandler(svc, st.Ping))

	serveErr := httpapi.Run(ctx, logger, httpapi.ServerConfig{Addr: cfg.HTTPAddr}, handler)
	if err := stopRecorder(); err != nil {
		logger.Error("recorder shutdown failed", "error", err)
	}
	if serveErr != nil {
		return WrapExitError(ExitCommandError, "http server failed", serveErr)
	}
	logger.Info("http server stopped")
	return nil
}
