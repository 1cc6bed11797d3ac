package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
)

// Sort keys understood by every LogRepo implementation.
const (
	SortID        = "id"
	SortTimestamp = "timestamp"
	SortVehicleID = "vehicleId"
	SortLevel     = "level"
	SortCode      = "code"
	SortMessage   = "message"
)

// sortColumns maps public sort keys to vehicle_logs columns.
var sortColumns = map[string]string{
	SortID:        "id",
	SortTimestamp: "occurred_at",
	SortVehicleID: "vehicle_id",
	SortLevel:     "level",
	SortCode:      "code",
	SortMessage:   "message",
}

// IsSortKey reports whether key names a sortable field.
func IsSortKey(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

// LogQuery is the store-level form of a filtered, sorted page request.
// Empty strings and zero times disable the corresponding filter.
type LogQuery struct {
	VehicleID string
	Level     string
	Code      string
	From      time.Time // inclusive
	To        time.Time // inclusive

	SortBy string // one of the Sort* keys; empty means SortTimestamp
	Desc   bool

	Offset int
	Limit  int // 0 means no limit
}

type LogRepo interface {
	Insert(ctx context.Context, e models.LogEntry) (models.LogEntry, error)
	Count(ctx context.Context) (int, error)
	QueryPage(ctx context.Context, q LogQuery) ([]models.LogEntry, int, error)
	Stats(ctx context.Context) (models.LogStats, error)
}

// BatchRepo is the upload history.
type BatchRepo interface {
	Append(ctx context.Context, b models.UploadBatch) (models.UploadBatch, error)
	List(ctx context.Context, from, to time.Time) ([]models.UploadBatch, error)
}

type Repository struct {
	Logs    LogRepo
	Batches BatchRepo
}

// NewRepository backs the log store with an open database.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{
		Logs:    NewLogSQL(db, dialect),
		Batches: NewBatchSQL(db, dialect),
	}
}

// NewMemoryRepository keeps logs in process memory for the lifetime of the process.
func NewMemoryRepository() *Repository {
	return &Repository{
		Logs:    NewLogMemory(),
		Batches: NewBatchMemory(),
	}
}
