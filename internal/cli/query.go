package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/service"
)

// withService opens the configured store, wraps it in a read-only query
// service and runs fn. Service errors are reported through the formatter.
func withService(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service, f *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	f.VerboseLog("Using %s store", st.Backend())
	return fn(ctx, service.New(st), f)
}
