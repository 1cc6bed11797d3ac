package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/parser"

	"github.com/google/uuid"
)

// BatchSQL stores the upload history in upload_batches.
type BatchSQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewBatchSQL(db *sql.DB, dialect Dialect) *BatchSQL {
	return &BatchSQL{db: db, dialect: dialect}
}

// Append inserts a batch. Empty ID and zero UploadedAt are filled in.
func (r *BatchSQL) Append(ctx context.Context, b models.UploadBatch) (models.UploadBatch, error) {
	b = withBatchDefaults(b)

	q := fmt.Sprintf(`INSERT INTO upload_batches (id, source, lines, stored, skipped, uploaded_at)
		VALUES (%s)`, r.dialect.placeholders(6))
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.Source, b.Lines, b.Stored, b.Skipped, b.UploadedAt.Format(parser.SortableLayout))
	if err != nil {
		return models.UploadBatch{}, fmt.Errorf("insert upload batch: %w", err)
	}
	return b, nil
}

// List returns batches uploaded within [from, to] (zero bounds are open), oldest first.
func (r *BatchSQL) List(ctx context.Context, from, to time.Time) ([]models.UploadBatch, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		args = append(args, from.UTC().Format(parser.SortableLayout))
		conds = append(conds, "uploaded_at >= "+r.dialect.placeholder(len(args)))
	}
	if !to.IsZero() {
		args = append(args, to.UTC().Format(parser.SortableLayout))
		conds = append(conds, "uploaded_at <= "+r.dialect.placeholder(len(args)))
	}

	q := `SELECT id, source, lines, stored, skipped, uploaded_at FROM upload_batches`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY uploaded_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list upload batches: %w", err)
	}
	defer rows.Close()

	out := make([]models.UploadBatch, 0, 16)
	for rows.Next() {
		var (
			b  models.UploadBatch
			at string
		)
		if err := rows.Scan(&b.ID, &b.Source, &b.Lines, &b.Stored, &b.Skipped, &at); err != nil {
			return nil, fmt.Errorf("scan upload batch: %w", err)
		}
		if b.UploadedAt, err = time.Parse(parser.SortableLayout, at); err != nil {
			return nil, fmt.Errorf("upload batch %s: bad uploaded_at %q: %w", b.ID, at, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list upload batches: %w", err)
	}
	return out, nil
}

func withBatchDefaults(b models.UploadBatch) models.UploadBatch {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.UploadedAt.IsZero() {
		b.UploadedAt = time.Now()
	}
	b.UploadedAt = b.UploadedAt.UTC()
	return b
}
