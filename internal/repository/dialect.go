package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the SQL flavour LogSQL emits.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var ErrUnknownDialect = errors.New("unknown sql dialect")

// ParseDialect maps a configured store driver name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectSQLite, DialectPostgres:
		return d, nil
	case "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}

// placeholder returns the n-th (1-based) bind parameter marker.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// placeholders returns count comma-separated markers starting at 1.
func (d Dialect) placeholders(count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// limitOffset renders the pagination clause; limit 0 means unbounded.
// next is the number of the first free bind parameter.
func (d Dialect) limitOffset(limit, offset, next int) (string, []any) {
	switch {
	case limit > 0:
		return fmt.Sprintf(" LIMIT %s OFFSET %s", d.placeholder(next), d.placeholder(next+1)), []any{limit, offset}
	case offset > 0 && d == DialectPostgres:
		return " OFFSET " + d.placeholder(next), []any{offset}
	case offset > 0:
		// SQLite needs a LIMIT before OFFSET; -1 means no limit.
		return " LIMIT -1 OFFSET " + d.placeholder(next), []any{offset}
	default:
		return "", nil
	}
}
