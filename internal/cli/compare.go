package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/divergence"
	"github.com/roach88/qtrace/internal/service"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Strict bool // exit 1 when the executions differ
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <execution-a> <execution-b>",
		Short: "Compare two executions structurally",
		Long: `Align two executions by step index and report where event type, gate
name or qubits differ. Steps past the shorter execution are listed as
extra events. Noise settings and measurement outcomes are not compared.

Exit codes:
  0 - Compared (identical, or different without --strict)
  1 - Executions differ and --strict was given
  2 - Command error (unknown execution, database unreachable)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(opts.RootOptions, cmd, func(ctx context.Context, svc *service.Service, f *OutputFormatter) error {
				report, err := svc.Compare(ctx, args[0], args[1])
				if err != nil {
					return f.Fail("failed to compare executions", err)
				}
				if err := f.Result(report, func(w io.Writer) error {
					writeReport(w, report)
					return nil
				}); err != nil {
					return err
				}
				if opts.Strict && !report.Identical() {
					return NewExitError(ExitFailure, "executions differ")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 if the executions differ")

	return cmd
}

func writeReport(w io.Writer, r divergence.Report) {
	fmt.Fprintf(w, "Compare: %s (%d steps) vs %s (%d steps)\n",
		r.ExecutionA, r.TotalStepsA, r.ExecutionB, r.TotalStepsB)

	if r.Identical() {
		fmt.Fprintln(w, "✓ Structurally identical")
		return
	}

	fmt.Fprintf(w, "✗ %d divergent step(s)\n", r.DivergenceCount)
	for _, s := range r.DivergenceSteps {
		fmt.Fprintf(w, "  [%d] %s | %s\n", s.Step, describeEvent(s.ExecA), describeEvent(s.ExecB))
	}
	for _, e := range r.ExtraEventsA {
		fmt.Fprintf(w, "  extra in A [%d] %s\n", e.ID, describeEvent(e))
	}
	for _, e := range r.ExtraEventsB {
		fmt.Fprintf(w, "  extra in B [%d] %s\n", e.ID, describeEvent(e))
	}
}
