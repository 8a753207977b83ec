package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qtrace/internal/archive"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/service"
)

// ArchiveResult lists the snapshots written by one archive run.
type ArchiveResult struct {
	Objects []archive.Object `json:"objects"`
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <execution-id>...",
		Short: "Export execution snapshots to S3-compatible storage",
		Long: `Write each execution as JSON to executions/<id>.json in the configured
bucket, creating the bucket if needed. Log and graph digests are attached
as object metadata.

Requires QTRACE_S3_ENDPOINT, QTRACE_S3_ACCESS_KEY and QTRACE_S3_SECRET_KEY.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runArchive(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if !cfg.Archive.Configured() {
		return NewExitError(ExitCommandError, "archive is not configured: set QTRACE_S3_ENDPOINT")
	}
	client, err := archive.Dial(cfg.Archive)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create object storage client", err)
	}
	exporter := archive.NewExporter(client, cfg.Archive.Bucket, cfg.Archive.Region)

	return withService(opts, cmd, func(ctx context.Context, svc *service.Service, f *OutputFormatter) error {
		if err := exporter.EnsureBucket(ctx); err != nil {
			return f.Fail("failed to prepare bucket", err)
		}
		return exportAll(ctx, svc, exporter, f, ids)
	})
}

// snapshotSource loads executions; *service.Service satisfies it.
type snapshotSource interface {
	Execution(ctx context.Context, id string) (*ir.Execution, error)
}

func exportAll(ctx context.Context, src snapshotSource, exporter *archive.Exporter, f *OutputFormatter, ids []string) error {
	result := ArchiveResult{Objects: make([]archive.Object, 0, len(ids))}
	for _, id := range ids {
		exec, err := src.Execution(ctx, id)
		if err != nil {
			return f.Fail(fmt.Sprintf("failed to load %s", id), err)
		}
		obj, err := exporter.Export(ctx, exec)
		if err != nil {
			return f.Fail(fmt.Sprintf("failed to export %s", id), err)
		}
		f.VerboseLog("Exported %s (%d bytes)", obj.Key, obj.Size)
		result.Objects = append(result.Objects, obj)
	}

	return f.Result(result, func(w io.Writer) error {
		for _, obj := range result.Objects {
			fmt.Fprintf(w, "✓ s3://%s/%s sha256:%s\n", obj.Bucket, obj.Key, obj.SHA256)
		}
		return nil
	})
}
