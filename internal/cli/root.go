package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // overrides QTRACE_DB
	Driver   string // overrides QTRACE_DB_DRIVER
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qtrace CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qtrace",
		Short: "qtrace - quantum execution tracing",
		Long: `Record quantum circuit executions as event logs, derive their
dependency graphs, and replay or compare them step by step.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Driver != "" && opts.Driver != config.DriverSQLite && opts.Driver != config.DriverPostgres {
				return fmt.Errorf("invalid driver %q: must be %s or %s", opts.Driver, config.DriverSQLite, config.DriverPostgres)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database path, or PostgreSQL URL with --driver postgres (default $QTRACE_DB)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "storage driver sqlite|postgres (default $QTRACE_DB_DRIVER)")

	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}
