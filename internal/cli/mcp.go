package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/mcpserver"
	"github.com/roach88/qtrace/internal/service"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve qtrace tools over MCP stdio",
		Long: `Serve list, inspect, replay, compare and record tools to an MCP client
over stdin/stdout. Logs go to stderr so they never mix with the protocol.

Example client configuration:
  {"command": "qtrace", "args": ["mcp", "--db", "/path/to/qtrace.db"]}`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(rootOpts, cmd)
		},
	}
	return cmd
}

func runMCP(opts *RootOptions, cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
	defer setupTelemetry(ctx, cfg, logger)()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, stopRecorder := startRecorder(context.WithoutCancel(ctx), st, cfg, logger)
	svc := service.New(st, service.WithRecorder(rec))

	logger.Info("mcp server starting", "backend", st.Backend())
	runErr := mcpserver.Run(ctx, svc)
	if err := stopRecorder(); err != nil {
		logger.Error("recorder shutdown failed", "error", err)
	}
	if !isShutdown(runErr) {
		return WrapExitError(ExitCommandError, "mcp server failed", runErr)
	}
	return nil
}

// isShutdown reports whether err only reflects a requested shutdown.
func isShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
