package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/service"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Page  int
	Limit int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded executions, newest first",
		Long: `List recorded executions, newest first.

Examples:
  qtrace list
  qtrace list --page 2 --limit 20
  qtrace list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(opts.RootOptions, cmd, func(ctx context.Context, svc *service.Service, f *OutputFormatter) error {
				page, err := svc.List(ctx, opts.Page, opts.Limit)
				if err != nil {
					return f.Fail("failed to list executions", err)
				}
				return f.Result(page, func(w io.Writer) error {
					if len(page.Executions) == 0 {
						fmt.Fprintln(w, "No executions recorded.")
						return nil
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tCIRCUIT\tEVENTS\tNOISE\tCREATED")
					for _, e := range page.Executions {
						noise := "-"
						if e.IsNoisy {
							noise = e.NoiseType + "/" + e.NoiseLevel
						}
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
							e.ID, e.CircuitName, e.NumEvents, noise, e.CreatedAt.Format(time.RFC3339))
					}
					if err := tw.Flush(); err != nil {
						return err
					}
					fmt.Fprintf(w, "\nPage %d (limit %d), %d total\n", page.Page, page.Limit, page.Total)
					return nil
				})
			})
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&opts.Limit, "limit", service.DefaultPageSize, "executions per page (max 50)")

	return cmd
}
