package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/repository"
)

// ErrInvalidQuery marks caller input errors: bad page/limit, unknown sort, inverted range.
var ErrInvalidQuery = errors.New("invalid query")

// ExportHeader is the CSV header row written by Export.
var ExportHeader = []string{"id", "timestamp", "vehicleId", "level", "code", "message"}

type LogQueryService struct {
	logRepo  repository.LogRepo
	maxLimit int
}

func NewLogQueryService(logRepo repository.LogRepo, maxLimit int) *LogQueryService {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &LogQueryService{logRepo: logRepo, maxLimit: maxLimit}
}

// List returns one page of matching logs plus the pre-pagination total.
func (s *LogQueryService) List(ctx context.Context, q LogQuery) (Page, error) {
	rq, err := normalizeAndValidateFilter(q)
	if err != nil {
		return Page{}, err
	}
	if q.Page < 1 {
		return Page{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidQuery, q.Page)
	}
	if q.Limit < 1 || q.Limit > s.maxLimit {
		return Page{}, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidQuery, s.maxLimit, q.Limit)
	}
	rq.Offset = pageOffset(q.Page, q.Limit)
	rq.Limit = q.Limit

	data, total, err := s.logRepo.QueryPage(ctx, rq)
	if err != nil {
		return Page{}, err
	}
	if data == nil {
		data = []models.LogEntry{}
	}
	return Page{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Export writes every matching log as CSV in sorted order and returns the row count.
// Page and Limit are ignored.
func (s *LogQueryService) Export(ctx context.Context, w io.Writer, q LogQuery) (int, error) {
	rq, err := normalizeAndValidateFilter(q)
	if err != nil {
		return 0, err
	}
	data, _, err := s.logRepo.QueryPage(ctx, rq)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range data {
		if err := cw.Write(exportRecord(e)); err != nil {
			return 0, fmt.Errorf("write csv row %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(data), nil
}

// pageOffset returns (page-1)*limit, saturating at math.MaxInt so a huge
// page lands past the end instead of wrapping negative.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func exportRecord(e models.LogEntry) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Timestamp,
		e.VehicleID,
		e.Level,
		e.Code,
		e.Message,
	}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeSort applies defaults and validates the sort key and direction.
func normalizeSort(sortKey, order string) (string, bool, error) {
	sortKey = strings.TrimSpace(sortKey)
	if sortKey == "" {
		sortKey = DefaultSort
	}
	if !repository.IsSortKey(sortKey) {
		return "", false, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, sortKey)
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", DefaultSortOrder:
		return sortKey, false, nil
	case "desc":
		return sortKey, true, nil
	default:
		return "", false, fmt.Errorf("%w: sortOrder must be asc or desc, got %q", ErrInvalidQuery, order)
	}
}

// normalizeAndValidateFilter converts q to a store query without pagination.
func normalizeAndValidateFilter(q LogQuery) (repository.LogQuery, error) {
	from := normalizeToUTC(q.From)
	to := normalizeToUTC(q.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.LogQuery{}, fmt.Errorf("%w: from must be <= to", ErrInvalidQuery)
	}

	sortKey, desc, err := normalizeSort(q.Sort, q.SortOrder)
	if err != nil {
		return repository.LogQuery{}, err
	}

	return repository.LogQuery{
		VehicleID: strings.TrimSpace(q.VehicleID),
		Level:     strings.TrimSpace(q.Level),
		Code:      strings.TrimSpace(q.Code),
		From:      from,
		To:        to,
		SortBy:    sortKey,
		Desc:      desc,
	}, nil
}
