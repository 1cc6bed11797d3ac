package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/parser"
)

// LogSQL is a LogRepo over the vehicle_logs table.
type LogSQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewLogSQL(db *sql.DB, dialect Dialect) *LogSQL {
	return &LogSQL{db: db, dialect: dialect}
}

var _ LogRepo = (*LogSQL)(nil)

const (
	selectLogColumnsSQL = `SELECT id, raw_timestamp, vehicle_id, level, code, message FROM vehicle_logs`
	countLogsSQL        = `SELECT COUNT(*) FROM vehicle_logs`
	statsByLevelSQL     = `SELECT level, COUNT(*) FROM vehicle_logs GROUP BY level`
)

// Insert writes e and returns it with the database-generated id.
// occurred_at is NULL when the raw timestamp cannot be parsed.
func (r *LogSQL) Insert(ctx context.Context, e models.LogEntry) (models.LogEntry, error) {
	var occurredAt sql.NullString
	if s, ok := parser.SortableTimestamp(e.Timestamp); ok {
		occurredAt = sql.NullString{String: s, Valid: true}
	}

	q := `INSERT INTO vehicle_logs (raw_timestamp, occurred_at, vehicle_id, level, code, message) VALUES (` +
		r.dialect.placeholders(6) + `) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, q,
		e.Timestamp,
		occurredAt,
		e.VehicleID,
		e.Level,
		e.Code,
		e.Message,
	).Scan(&id)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("insert log for vehicle %q: %w", e.VehicleID, err)
	}
	e.ID = id
	return e, nil
}

func (r *LogSQL) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countLogsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return n, nil
}

// QueryPage runs a COUNT over the filtered set and then fetches one sorted window of it.
func (r *LogSQL) QueryPage(ctx context.Context, q LogQuery) ([]models.LogEntry, int, error) {
	where, args := r.where(q)

	var total int
	if err := r.db.QueryRowContext(ctx, countLogsSQL+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count filtered logs: %w", err)
	}

	page, pageArgs := r.dialect.limitOffset(q.Limit, q.Offset, len(args)+1)
	stmt := selectLogColumnsSQL + where + orderBy(q) + page

	rows, err := r.db.QueryContext(ctx, stmt, append(args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.LogEntry, 0, q.Limit)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.VehicleID, &e.Level, &e.Code, &e.Message); err != nil {
			return nil, 0, fmt.Errorf("scan log row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate log rows: %w", err)
	}
	return out, total, nil
}

func (r *LogSQL) Stats(ctx context.Context) (models.LogStats, error) {
	rows, err := r.db.QueryContext(ctx, statsByLevelSQL)
	if err != nil {
		return models.LogStats{}, fmt.Errorf("query level stats: %w", err)
	}
	defer rows.Close()

	st := models.LogStats{ByLevel: make(map[string]int), GeneratedAt: time.Now().UTC()}
	for rows.Next() {
		var (
			level string
			n     int
		)
		if err := rows.Scan(&level, &n); err != nil {
			return models.LogStats{}, fmt.Errorf("scan level stats: %w", err)
		}
		st.ByLevel[level] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return models.LogStats{}, fmt.Errorf("iterate level stats: %w", err)
	}
	return st, nil
}

// where builds the WHERE clause and its bind arguments for the active filters.
func (r *LogSQL) where(q LogQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, r.dialect.placeholder(len(args))))
	}

	if q.VehicleID != "" {
		add("vehicle_id = %s", q.VehicleID)
	}
	if q.Level != "" {
		add("level = %s", q.Level)
	}
	if q.Code != "" {
		add("code = %s", q.Code)
	}
	if !q.From.IsZero() {
		add("occurred_at >= %s", q.From.UTC().Format(parser.SortableLayout))
	}
	if !q.To.IsZero() {
		add("occurred_at <= %s", q.To.UTC().Format(parser.SortableLayout))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderBy renders ORDER BY from whitelisted columns only. id breaks ties so
// equal keys keep insertion order in both directions; rows without a parsed
// instant go last when sorting by timestamp.
func orderBy(q LogQuery) string {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	switch key := q.SortBy; key {
	case SortID:
		return " ORDER BY id " + dir
	case "", SortTimestamp:
		return " ORDER BY occurred_at IS NULL, occurred_at " + dir + ", id ASC"
	default:
		col, ok := sortColumns[key]
		if !ok {
			col = sortColumns[SortTimestamp]
		}
		return " ORDER BY " + col + " " + dir + ", id ASC"
	}
}
