package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledCircuit is a circuit's event log and graph, without recording.
type CompiledCircuit struct {
	Name        string      `json:"name"`
	NumQubits   int         `json:"num_qubits"`
	NumClbits   int         `json:"num_clbits"`
	Events      ir.EventLog `json:"events"`
	Graph       ir.Graph    `json:"graph"`
	LogDigest   string      `json:"log_digest"`
	GraphDigest string      `json:"graph_digest"`
}

// CompilationResult holds every compiled circuit.
type CompilationResult struct {
	Circuits []CompiledCircuit `json:"circuits"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile CUE circuits to event logs and graphs",
		Long: `Compile the circuits declared in a CUE file or directory to their event
logs and graphs, with content digests. Nothing is stored; use record for
that.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	loaded, loadErrs := LoadCircuits(path)
	if len(loadErrs) > 0 {
		le := asLoadError(loadErrs[0])
		details := make([]string, len(loadErrs))
		for i, err := range loadErrs {
			details[i] = err.Error()
		}
		if err := f.Error(le.Code, fmt.Sprintf("%d error(s) compiling %s", len(loadErrs), path), details); err != nil {
			return err
		}
		code := ExitFailure
		if loaded == nil {
			code = ExitCommandError
		}
		return NewExitError(code, le.Message)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, path)

	result := CompilationResult{Circuits: make([]CompiledCircuit, 0, len(loaded.Circuits))}
	for _, c := range loaded.Circuits {
		f.VerboseLog("Compiling circuit: %s", c.Name)
		compiled, err := compileCircuit(c)
		if err != nil {
			if outErr := f.Error(ErrCodeInvalidCircuit, err.Error(), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitFailure, "compilation failed", err)
		}
		result.Circuits = append(result.Circuits, compiled)
	}

	if opts.Output != "" {
		if err := writeResultFile(result, opts.Output); err != nil {
			if outErr := f.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	return f.Result(result, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Compiled %d circuit(s)\n\n", len(result.Circuits))
		for _, c := range result.Circuits {
			fmt.Fprintf(w, "  %s: %d qubits, %d events, %d edges\n", c.Name, c.NumQubits, len(c.Events), len(c.Graph.Edges))
		}
		if opts.Output != "" {
			fmt.Fprintf(w, "\nWritten to %s\n", opts.Output)
		}
		return nil
	})
}

func compileCircuit(c *circuit.Circuit) (CompiledCircuit, error) {
	events, err := circuit.Extract(c)
	if err != nil {
		return CompiledCircuit{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	g, err := graph.Build(events)
	if err != nil {
		return CompiledCircuit{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	logDigest, err := ir.EventLogDigest(events)
	if err != nil {
		return CompiledCircuit{}, err
	}
	graphDigest, err := ir.GraphDigest(g)
	if err != nil {
		return CompiledCircuit{}, err
	}
	return CompiledCircuit{
		Name:        c.Name,
		NumQubits:   c.NumQubits,
		NumClbits:   c.NumClbits,
		Events:      events,
		Graph:       g,
		LogDigest:   logDigest,
		GraphDigest: graphDigest,
	}, nil
}

// writeResultFile writes the result as indented JSON.
func writeResultFile(result CompilationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
