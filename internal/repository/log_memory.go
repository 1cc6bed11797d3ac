package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/parser"
)

// LogMemory is an in-process LogRepo. One RWMutex guards the slice and the id counter.
type LogMemory struct {
	mu     sync.RWMutex
	nextID int64
	logs   []memoryRow
}

// memoryRow caches the parsed instant so filters and sorts don't re-parse.
type memoryRow struct {
	entry models.LogEntry
	at    time.Time
	hasAt bool
}

func NewLogMemory() *LogMemory {
	return &LogMemory{nextID: 1}
}

// Ensure implementation of LogRepo interface at compile time.
var _ LogRepo = (*LogMemory)(nil)

// Insert stores a copy of e under a fresh id.
func (r *LogMemory) Insert(_ context.Context, e models.LogEntry) (models.LogEntry, error) {
	at, err := parser.ParseTimestamp(e.Timestamp)

	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.logs = append(r.logs, memoryRow{entry: e, at: at, hasAt: err == nil})
	return e, nil
}

func (r *LogMemory) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs), nil
}

// QueryPage filters, stable-sorts and slices a snapshot of the stored rows.
func (r *LogMemory) QueryPage(_ context.Context, q LogQuery) ([]models.LogEntry, int, error) {
	r.mu.RLock()
	matched := make([]memoryRow, 0, len(r.logs))
	for _, row := range r.logs {
		if row.matches(q) {
			matched = append(matched, row)
		}
	}
	r.mu.RUnlock()

	cmp := rowCompare(q.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if (q.SortBy == "" || q.SortBy == SortTimestamp) && a.hasAt != b.hasAt {
			return a.hasAt
		}
		if q.Desc {
			return cmp(a, b) > 0
		}
		return cmp(a, b) < 0
	})

	total := len(matched)
	start, end := window(total, q.Offset, q.Limit)
	out := make([]models.LogEntry, 0, end-start)
	for _, row := range matched[start:end] {
		out = append(out, row.entry)
	}
	return out, total, nil
}

// Stats counts stored rows per level.
func (r *LogMemory) Stats(_ context.Context) (models.LogStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := models.LogStats{
		Total:       len(r.logs),
		ByLevel:     make(map[string]int),
		GeneratedAt: time.Now().UTC(),
	}
	for _, row := range r.logs {
		st.ByLevel[row.entry.Level]++
	}
	return st, nil
}

func (row memoryRow) matches(q LogQuery) bool {
	e := row.entry
	if q.VehicleID != "" && e.VehicleID != q.VehicleID {
		return false
	}
	if q.Level != "" && e.Level != q.Level {
		return false
	}
	if q.Code != "" && e.Code != q.Code {
		return false
	}
	if !q.From.IsZero() && (!row.hasAt || row.at.Before(q.From)) {
		return false
	}
	if !q.To.IsZero() && (!row.hasAt || row.at.After(q.To)) {
		return false
	}
	return true
}

// rowCompare orders rows by the given key; an empty key means timestamp.
// Rows with unparseable timestamps compare equal to each other.
func rowCompare(key string) func(a, b memoryRow) int {
	switch key {
	case SortID:
		return func(a, b memoryRow) int {
			switch {
			case a.entry.ID < b.entry.ID:
				return -1
			case a.entry.ID > b.entry.ID:
				return 1
			}
			return 0
		}
	case SortVehicleID:
		return func(a, b memoryRow) int { return strings.Compare(a.entry.VehicleID, b.entry.VehicleID) }
	case SortLevel:
		return func(a, b memoryRow) int { return strings.Compare(a.entry.Level, b.entry.Level) }
	case SortCode:
		return func(a, b memoryRow) int { return strings.Compare(a.entry.Code, b.entry.Code) }
	case SortMessage:
		return func(a, b memoryRow) int { return strings.Compare(a.entry.Message, b.entry.Message) }
	default:
		return func(a, b memoryRow) int { return a.at.Compare(b.at) }
	}
}

// window clips [offset, offset+limit) to [0, total]. limit 0 means no limit.
func window(total, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		return total, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
