package parser

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T10:00:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00.5Z", time.Date(2024, 1, 1, 10, 0, 0, 500_000_000, time.UTC)},
		{"2024-01-01T12:00:00+02:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01 10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimestamp(tc.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q): %v", tc.in, err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Fatalf("ParseTimestamp(%q) = %v; want %v UTC", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "2024-02-30T10:00:00Z", "10:00"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Errorf("ParseTimestamp(%q) expected error", in)
		}
	}
}

func TestIsDateOnly(t *testing.T) {
	if !IsDateOnly("2024-01-31") {
		t.Fatal("expected date-only")
	}
	for _, s := range []string{"2024-01-31T00:00:00Z", "2024-01-31 10:00:00", "bogus"} {
		if IsDateOnly(s) {
			t.Errorf("IsDateOnly(%q) = true", s)
		}
	}
}

func TestParseRangeEnd(t *testing.T) {
	got, err := ParseRangeEnd("2024-01-31")
	if err != nil {
		t.Fatalf("ParseRangeEnd: %v", err)
	}
	if want := time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC); !got.Equal(want) {
		t.Fatalf("date-only end = %v, want %v", got, want)
	}

	got, err = ParseRangeEnd("2024-01-31T10:00:00Z")
	if err != nil {
		t.Fatalf("ParseRangeEnd: %v", err)
	}
	if want := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("instant end = %v, want %v", got, want)
	}

	if _, err := ParseRangeEnd("31/01/2024"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSortableTimestamp_OrdersChronologically(t *testing.T) {
	a, ok := SortableTimestamp("2024-01-01T10:00:00+02:00") // 08:00Z
	if !ok {
		t.Fatal("expected parse")
	}
	b, ok := SortableTimestamp("2024-01-01T09:00:00.25Z")
	if !ok {
		t.Fatal("expected parse")
	}
	if !(a < b) {
		t.Fatalf("expected %q < %q", a, b)
	}
	if len(a) != len(b) {
		t.Fatalf("expected fixed width, got %d and %d", len(a), len(b))
	}
	if _, ok := SortableTimestamp("garbage"); ok {
		t.Fatal("expected garbage to be rejected")
	}
}
