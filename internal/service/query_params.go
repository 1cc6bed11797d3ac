package service

import (
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
)

// Query defaults shared by the HTTP and CLI boundaries.
const (
	DefaultPage      = 1
	DefaultLimit     = 10
	DefaultMaxLimit  = 1000
	DefaultSort      = "timestamp"
	DefaultSortOrder = "asc"
)

// LogQuery is a caller's page request. Empty filter fields are not applied.
type LogQuery struct {
	VehicleID string
	Level     string
	Code      string
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound

	Sort      string // id | timestamp | vehicleId | level | code | message
	SortOrder string // asc | desc

	Page  int // 1-based; ignored by Export
	Limit int // ignored by Export
}

// Page is one window of a filtered, sorted result set.
type Page struct {
	Data  []models.LogEntry `json:"data"`
	Total int               `json:"total"` // matches before pagination
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// IngestResult reports what happened to the lines of one upload.
type IngestResult struct {
	BatchID string `json:"batchId"`
	Lines   int    `json:"lines"`
	Stored  int    `json:"stored"`
	Skipped int    `json:"skipped"`
}
