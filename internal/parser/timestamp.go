package parser

import (
	"fmt"
	"time"
)

// Accepted timestamp layouts, tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// SortableLayout renders instants as fixed-width UTC text whose byte order is
// chronological order. SQL stores persist it in the occurred_at column.
const SortableLayout = "2006-01-02T15:04:05.000000000Z"

// ParseTimestamp reads an ISO-8601 style timestamp and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2024-01-01T10:00:00Z), "+
			"'YYYY-MM-DDTHH:MM:SS', "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// IsDateOnly reports whether s carries no time-of-day component.
func IsDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ParseRangeEnd parses the inclusive upper bound of a time range.
// A date-only value covers the whole day.
func ParseRangeEnd(s string) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	if IsDateOnly(s) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// SortableTimestamp converts a raw record timestamp to SortableLayout.
// ok is false when the timestamp cannot be parsed.
func SortableTimestamp(raw string) (string, bool) {
	t, err := ParseTimestamp(raw)
	if err != nil {
		return "", false
	}
	return t.Format(SortableLayout), true
}
