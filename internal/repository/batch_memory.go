package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
)

// BatchMemory keeps the upload history in process memory.
type BatchMemory struct {
	mu      sync.RWMutex
	batches []models.UploadBatch
}

func NewBatchMemory() *BatchMemory {
	return &BatchMemory{}
}

func (m *BatchMemory) Append(_ context.Context, b models.UploadBatch) (models.UploadBatch, error) {
	b = withBatchDefaults(b)
	m.mu.Lock()
	m.batches = append(m.batches, b)
	m.mu.Unlock()
	return b, nil
}

func (m *BatchMemory) List(_ context.Context, from, to time.Time) ([]models.UploadBatch, error) {
	m.mu.RLock()
	out := make([]models.UploadBatch, 0, len(m.batches))
	for _, b := range m.batches {
		if !from.IsZero() && b.UploadedAt.Before(from) {
			continue
		}
		if !to.IsZero() && b.UploadedAt.After(to) {
			continue
		}
		out = append(out, b)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
