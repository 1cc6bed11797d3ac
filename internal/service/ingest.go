package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/parser"
	"github.com/AshishJayaram/log-reader-backend/internal/repository"

	"github.com/google/uuid"
)

// ErrInvalidPayload marks uploads that cannot be decoded into text.
var ErrInvalidPayload = errors.New("invalid upload payload")

type IngestService struct {
	logRepo   repository.LogRepo
	batchRepo repository.BatchRepo
}

func NewIngestService(logRepo repository.LogRepo, batchRepo repository.BatchRepo) *IngestService {
	return &IngestService{logRepo: logRepo, batchRepo: batchRepo}
}

// Ingest parses r line by line and inserts every matching line in order.
// Lines that do not match the grammar are counted as skipped. A store error
// stops ingestion; rows inserted before it stay, and the partial result is
// returned together with the error. Every run that stored at least one line
// is recorded in the upload history under source.
func (s *IngestService) Ingest(ctx context.Context, source string, r io.Reader) (IngestResult, error) {
	res := IngestResult{BatchID: uuid.NewString()}
	defer func() {
		if res.Stored > 0 {
			s.recordBatch(ctx, source, res)
		}
	}()

	rc, err := parser.NewDecodedReader(r)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	defer rc.Close()

	var storeErr error
	err = parser.EachLine(rc, func(line string) error {
		res.Lines++
		entry, ok := parser.Parse(line)
		if !ok {
			res.Skipped++
			return nil
		}
		if _, err := s.logRepo.Insert(ctx, entry); err != nil {
			storeErr = fmt.Errorf("store line %d: %w", res.Lines, err)
			return storeErr
		}
		res.Stored++
		return nil
	})
	switch {
	case storeErr != nil:
		return res, storeErr
	case err != nil:
		return res, fmt.Errorf("%w: read line %d: %v", ErrInvalidPayload, res.Lines+1, err)
	}
	return res, nil
}

// recordBatch appends res to the upload history. Errors are ignored; the
// lines are already stored.
func (s *IngestService) recordBatch(ctx context.Context, source string, res IngestResult) {
	if s.batchRepo == nil {
		return
	}
	_, _ = s.batchRepo.Append(ctx, models.UploadBatch{
		ID:      res.BatchID,
		Source:  source,
		Lines:   res.Lines,
		Stored:  res.Stored,
		Skipped: res.Skipped,
	})
}

// Batches lists the upload history within [from, to]; zero bounds are open.
func (s *IngestService) Batches(ctx context.Context, from, to time.Time) ([]models.UploadBatch, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: 'from' must not be after 'to'", ErrInvalidQuery)
	}
	if s.batchRepo == nil {
		return []models.UploadBatch{}, nil
	}
	out, err := s.batchRepo.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list upload batches: %w", err)
	}
	return out, nil
}
