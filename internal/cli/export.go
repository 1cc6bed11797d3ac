package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AshishJayaram/log-reader-backend/internal/config"
	"github.com/AshishJayaram/log-reader-backend/internal/parser"
	"github.com/AshishJayaram/log-reader-backend/internal/service"

	"github.com/spf13/cobra"
)

type exportOptions struct {
	vehicleID string
	level     string
	code      string
	from      string
	to        string
	sort      string
	order     string
	output    string
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	eo := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored logs as CSV",
		Long: `Write every stored log matching the filters as CSV, with the same
filter and sort semantics as GET /api/v1/logs/export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, eo)
		},
	}

	f := cmd.Flags()
	f.StringVar(&eo.vehicleID, "vehicle-id", "", "exact vehicle id")
	f.StringVar(&eo.level, "level", "", "exact level")
	f.StringVar(&eo.code, "code", "", "exact diagnostic code")
	f.StringVar(&eo.from, "from", "", "start of range, inclusive")
	f.StringVar(&eo.to, "to", "", "end of range, inclusive; a date covers the whole day")
	f.StringVar(&eo.sort, "sort", service.DefaultSort, "sort field: id, timestamp, vehicleId, level, code, message")
	f.StringVar(&eo.order, "order", service.DefaultSortOrder, "sort order: asc or desc")
	f.StringVarP(&eo.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (eo *exportOptions) query() (service.LogQuery, error) {
	q := service.LogQuery{
		VehicleID: eo.vehicleID,
		Level:     eo.level,
		Code:      eo.code,
		Sort:      eo.sort,
		SortOrder: eo.order,
	}
	if eo.from != "" {
		from, err := parser.ParseTimestamp(eo.from)
		if err != nil {
			return q, fmt.Errorf("--from: %w", err)
		}
		q.From = from
	}
	if eo.to != "" {
		to, err := parser.ParseRangeEnd(eo.to)
		if err != nil {
			return q, fmt.Errorf("--to: %w", err)
		}
		q.To = to
	}
	return q, nil
}

func runExport(cmd *cobra.Command, opts *rootOptions, eo *exportOptions) error {
	q, err := eo.query()
	if err != nil {
		return err
	}
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
	write := func(w io.Writer) (int, error) { return svc.Export(ctx, w, q) }

	var rows int
	if eo.output == "" {
		rows, err = write(cmd.OutOrStdout())
	} else {
		var f *os.File
		if f, err = os.Create(eo.output); err != nil {
			return err
		}
		rows, err = writeAndClose(f, write)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows\n", rows)
	return nil
}

// writeAndClose runs write against wc and always closes it. A Close error is
// returned when write itself succeeded, since it can mean lost data.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) (int, error)) (int, error) {
	n, err := write(wc)
	if cerr := wc.Close(); err == nil && cerr != nil {
		return n, fmt.Errorf("close export file: %w", cerr)
	}
	return n, err
}
