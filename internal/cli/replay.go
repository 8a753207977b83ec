package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/replay"
	"github.com/roach88/qtrace/internal/service"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Step int // -1 replays every step
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <execution-id>",
		Short: "Replay a recorded execution step by step",
		Long: `Replay a recorded execution in event order.

With --step, only that step is shown together with the QUBIT_DEP edges
entering it. An index outside the execution is an error that reports the
valid range.

Examples:
  qtrace replay 01930b4e-...
  qtrace replay 01930b4e-... --step 2
  qtrace replay 01930b4e-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(opts.RootOptions, cmd, func(ctx context.Context, svc *service.Service, f *OutputFormatter) error {
				if cmd.Flags().Changed("step") {
					return replayStep(ctx, svc, f, args[0], opts.Step)
				}
				return replayFull(ctx, svc, f, args[0])
			})
		},
	}

	cmd.Flags().IntVar(&opts.Step, "step", -1, "show a single step")

	return cmd
}

func replayFull(ctx context.Context, svc *service.Service, f *OutputFormatter, id string) error {
	r, err := svc.Replay(ctx, id)
	if err != nil {
		return f.Fail("failed to replay execution", err)
	}
	return f.Result(r, func(w io.Writer) error {
		fmt.Fprintf(w, "Replay: %s (%s), %d steps\n", r.ExecutionID, r.CircuitName, r.TotalSteps)
		for i, e := range r.Steps {
			fmt.Fprintf(w, "  [%d] %s\n", i, describeEvent(e))
		}
		return nil
	})
}

func replayStep(ctx context.Context, svc *service.Service, f *OutputFormatter, id string, index int) error {
	step, err := svc.Step(ctx, id, index)
	if err != nil {
		return f.Fail("failed to replay step", err)
	}
	return f.Result(step, func(w io.Writer) error {
		writeStep(w, step)
		return nil
	})
}

func writeStep(w io.Writer, s replay.Step) {
	fmt.Fprintf(w, "Step %d of %d: %s\n", s.Index, s.TotalSteps-1, describeEvent(s.Event))
	var nav []string
	if s.HasPrevious {
		nav = append(nav, fmt.Sprintf("previous %d", s.Index-1))
	}
	if s.HasNext {
		nav = append(nav, fmt.Sprintf("next %d", s.Index+1))
	}
	if len(nav) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(nav, ", "))
	}
	for _, e := range s.DependsOn {
		fmt.Fprintf(w, "  depends on %d via q%v\n", e.Source, e.Qubits)
	}
}

// describeEvent renders an event on one line, e.g. "GATE CX q[0 1]".
func describeEvent(e ir.Event) string {
	var b strings.Builder
	b.WriteString(string(e.Type()))
	if name := e.GateName(); name != "" {
		fmt.Fprintf(&b, " %s", name)
	}
	if q := e.Qubits(); len(q) > 0 {
		fmt.Fprintf(&b, " q%v", q)
	}
	if c := e.ClassicalBits(); len(c) > 0 {
		fmt.Fprintf(&b, " -> c%v", c)
	}
	return b.String()
}
