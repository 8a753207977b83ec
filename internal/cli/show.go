package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/service"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <execution-id>",
		Short: "Show execution metadata and graph summary",
		Long: `Show an execution's metadata, noise settings, recorded timings and a
summary of its graph.

Examples:
  qtrace show 01930b4e-...
  qtrace show 01930b4e-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(rootOpts, cmd, func(ctx context.Context, svc *service.Service, f *OutputFormatter) error {
				ov, err := svc.Overview(ctx, args[0])
				if err != nil {
					return f.Fail("failed to load execution", err)
				}
				return f.Result(ov, func(w io.Writer) error {
					writeOverview(w, ov)
					return nil
				})
			})
		},
	}
	return cmd
}

func writeOverview(w io.Writer, ov service.Overview) {
	fmt.Fprintf(w, "Execution: %s\n", ov.ID)
	fmt.Fprintf(w, "  Circuit:  %s\n", ov.CircuitName)
	fmt.Fprintf(w, "  Created:  %s\n", ov.CreatedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "  Events:   %d (%d gates)\n", ov.NumEvents, ov.NumGates)
	if ov.Noise != nil {
		fmt.Fprintf(w, "  Noise:    %s/%s (1q=%g 2q=%g meas=%g)\n",
			ov.Noise.Type, ov.Noise.Level, ov.Noise.SingleGateError, ov.Noise.TwoGateError, ov.Noise.MeasurementError)
	} else {
		fmt.Fprintln(w, "  Noise:    none")
	}
	fmt.Fprintf(w, "  Graph:    %d nodes, %d NEXT, %d QUBIT_DEP, depth %d, qubits %v\n",
		ov.Graph.NumNodes, ov.Graph.NumNextEdges, ov.Graph.NumQubitDepEdges, ov.Graph.Depth, ov.Graph.Qubits)
	if ov.Stats != nil {
		fmt.Fprintf(w, "  Timings:  extract %.3fms, graph %.3fms, persist %.3fms, total %.3fms\n",
			ov.Stats.EventExtractionMs, ov.Stats.GraphBuildMs, ov.Stats.PersistenceMs, ov.Stats.TotalMs)
	}
	fmt.Fprintf(w, "  Digests:  log %s\n", ov.LogDigest)
	fmt.Fprintf(w, "            graph %s\n", ov.GraphDigest)
}
