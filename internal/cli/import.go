package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/AshishJayaram/log-reader-backend/internal/config"
	"github.com/AshishJayaram/log-reader-backend/internal/service"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Parse log files into the configured store",
		Long: `Parse one or more log files (plain, gzip or zstd) and store every
matching line. Lines that do not match the log format are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args)
		},
	}
}

func runImport(cmd *cobra.Command, opts *rootOptions, paths []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	repos, closeStore, err := openRepository(cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc := service.NewService(repos, cfg.Query.MaxLimit)
	out := cmd.OutOrStdout()

	for _, path := range paths {
		res, err := importFile(ctx, svc, path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s: %d stored, %d skipped (batch %s)\n", path, res.Stored, res.Skipped, res.BatchID)
	}

	n, err := svc.Count(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "store total: %d\n", n)
	return nil
}

func importFile(ctx context.Context, svc *service.Service, path string) (service.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return service.IngestResult{}, err
	}
	defer func() { _ = f.Close() }()

	res, err := svc.Ingest(ctx, path, f)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", path, err)
	}
	return res, nil
}
