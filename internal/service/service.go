package service

import (
	"context"
	"io"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/repository"
)

// Ingestion turns uploaded log text into stored records.
type Ingestion interface {
	Ingest(ctx context.Context, source string, r io.Reader) (IngestResult, error)
	Batches(ctx context.Context, from, to time.Time) ([]models.UploadBatch, error)
}

// Logs exposes filtered, sorted, paginated reads and CSV export.
type Logs interface {
	List(ctx context.Context, q LogQuery) (Page, error)
	Export(ctx context.Context, w io.Writer, q LogQuery) (int, error)
}

// Monitoring exposes read-only store statistics.
type Monitoring interface {
	GetStats(ctx context.Context) (models.LogStats, error)
	Count(ctx context.Context) (int, error)
}

// Service aggregates all sub-services.
type Service struct {
	Ingestion
	Logs
	Monitoring
}

// NewService wires the repository layer into concrete services.
// maxLimit caps the page size List accepts; zero or less selects DefaultMaxLimit.
func NewService(repos *repository.Repository, maxLimit int) *Service {
	return &Service{
		Ingestion:  NewIngestService(repos.Logs, repos.Batches),
		Logs:       NewLogQueryService(repos.Logs, maxLimit),
		Monitoring: NewMonitoringService(repos.Logs),
	}
}
