package models

import "time"

// UploadBatch records one ingestion run.
type UploadBatch struct {
	ID         string    `json:"batchId"`
	Source     string    `json:"source"` // file name or path, may be empty
	Lines      int       `json:"lines"`
	Stored     int       `json:"stored"`
	Skipped    int       `json:"skipped"`
	UploadedAt time.Time `json:"uploadedAt"`
}
