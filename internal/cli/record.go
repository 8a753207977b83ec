package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/compiler"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/noise"
	"github.com/roach88/qtrace/internal/recorder"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	File       string // CUE file declaring the circuit
	NoiseType  string
	NoiseLevel string
	Gates      int
	Seed       uint64
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <circuit>",
		Short: "Record an execution of a circuit",
		Long: `Extract the event log of a circuit, build its graph and persist the
execution.

The circuit is a built-in (` + strings.Join(circuit.Names(), ", ") + `) or, with --file, a
circuit declared in a CUE file. Noise settings are stored as a descriptor
and never change the recorded structure.

Examples:
  qtrace record bell
  qtrace record random --gates 12 --seed 7
  qtrace record ghz --noise-type thermal --noise-level high
  qtrace record teleport --file ./circuits.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CUE file declaring the circuit")
	cmd.Flags().StringVar(&opts.NoiseType, "noise-type", "", "noise model: depolarizing|thermal")
	cmd.Flags().StringVar(&opts.NoiseLevel, "noise-level", "", "noise level: low|medium|high|very_high")
	cmd.Flags().IntVar(&opts.Gates, "gates", circuit.DefaultRandomGates, "gate count for the random circuit")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for the random circuit")

	return cmd
}

func runRecord(opts *RecordOptions, name string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	c, err := resolveCircuit(name, opts)
	if err != nil {
		return f.Fail("invalid circuit", err)
	}
	cfg, err := noise.ResolveNames(opts.NoiseType, opts.NoiseLevel)
	if err != nil {
		return f.Fail("invalid noise settings", err)
	}

	appCfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(appCfg, opts.Verbose, cmd.ErrOrStderr())
	defer setupTelemetry(ctx, appCfg, logger)()

	st, err := openStore(ctx, appCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, stop := startRecorder(ctx, st, appCfg, logger)
	exec, err := rec.Record(ctx, recorder.Request{Circuit: c, Noise: cfg})
	if stopErr := stop(); err == nil && stopErr != nil {
		err = stopErr
	}
	if err != nil {
		return f.Fail("failed to record execution", err)
	}

	return f.Result(exec.ExecutionMeta, func(w io.Writer) error {
		writeRecorded(w, exec)
		return nil
	})
}

// resolveCircuit picks a built-in, or a circuit declared in opts.File.
func resolveCircuit(name string, opts *RecordOptions) (*circuit.Circuit, error) {
	if opts.File == "" {
		return circuit.Lookup(name, circuit.Options{Gates: opts.Gates, Seed: opts.Seed})
	}
	circuits, err := compiler.LoadFile(opts.File)
	if err != nil {
		return nil, err
	}
	c, ok := compiler.Find(circuits, name)
	if !ok {
		return nil, fmt.Errorf("circuit %q not declared in %s", name, opts.File)
	}
	return c, nil
}

func writeRecorded(w io.Writer, exec *ir.Execution) {
	fmt.Fprintf(w, "✓ Recorded %s\n", exec.ID)
	fmt.Fprintf(w, "  Circuit: %s, %d events, %d gates\n", exec.CircuitName, exec.NumEvents, exec.NumGates)
	if exec.Noise != nil {
		fmt.Fprintf(w, "  Noise:   %s/%s\n", exec.Noise.Type, exec.Noise.Level)
	}
	if exec.Stats != nil {
		fmt.Fprintf(w, "  Total:   %.3fms\n", exec.Stats.TotalMs)
	}
}
