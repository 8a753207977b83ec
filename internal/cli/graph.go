package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/service"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <execution-id>",
		Short: "Print an execution's dependency graph",
		Long: `Print the nodes and edges of an execution's graph: NEXT edges in
event order, then QUBIT_DEP edges labelled with the qubits they carry.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(rootOpts, cmd, func(ctx context.Context, svc *service.Service, f *OutputFormatter) error {
				g, err := svc.Graph(ctx, args[0])
				if err != nil {
					return f.Fail("failed to load graph", err)
				}
				return f.Result(g, func(w io.Writer) error {
					return graph.WriteText(w, g)
				})
			})
		},
	}
	return cmd
}
