package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/repository"
)

func seededService(t *testing.T, payload string) *Service {
	t.Helper()
	svc := NewService(repository.NewMemoryRepository(), 0)
	if _, err := svc.Ingest(context.Background(), "seed.log", strings.NewReader(payload)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	return svc
}

func TestList_Scenario(t *testing.T) {
	t.Parallel()
	svc := seededService(t, scenarioLog)

	page, err := svc.List(context.Background(), LogQuery{
		VehicleID: "42", Sort: "timestamp", SortOrder: "desc", Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || page.Page != 1 || page.Limit != 10 || len(page.Data) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Data[0].Message != "low fuel" || page.Data[1].Message != "engine overheat" {
		t.Fatalf("unexpected order: %+v", page.Data)
	}
}

func TestList_Validation(t *testing.T) {
	t.Parallel()
	svc := NewLogQueryService(newFakeLogRepo(), 50)
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		q    LogQuery
	}{
		{"page zero", LogQuery{Page: 0, Limit: 10}},
		{"negative page", LogQuery{Page: -1, Limit: 10}},
		{"limit zero", LogQuery{Page: 1, Limit: 0}},
		{"limit above max", LogQuery{Page: 1, Limit: 51}},
		{"unknown sort", LogQuery{Page: 1, Limit: 10, Sort: "speed"}},
		{"bad order", LogQuery{Page: 1, Limit: 10, SortOrder: "sideways"}},
		{"inverted range", LogQuery{Page: 1, Limit: 10, From: from, To: from.Add(-time.Hour)}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.List(context.Background(), tc.q); !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestList_TranslatesQuery(t *testing.T) {
	t.Parallel()
	repo := newFakeLogRepo()
	repo.total = 7
	svc := NewLogQueryService(repo, 0)

	loc := time.FixedZone("UTC+3", 3*3600)
	from := time.Date(2024, 1, 1, 3, 0, 0, 0, loc)

	page, err := svc.List(context.Background(), LogQuery{
		VehicleID: " 42 ", Level: "WARN", Code: "W200",
		From: from, Sort: "level", SortOrder: "DESC", Page: 3, Limit: 5,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := repo.gotQuery
	if got.VehicleID != "42" || got.Level != "WARN" || got.Code != "W200" {
		t.Fatalf("filters not passed through: %+v", got)
	}
	if got.From.Location() != time.UTC || !got.From.Equal(from) {
		t.Fatalf("from not normalized to UTC: %v", got.From)
	}
	if got.SortBy != repository.SortLevel || !got.Desc || got.Offset != 10 || got.Limit != 5 {
		t.Fatalf("sort/window wrong: %+v", got)
	}
	if page.Total != 7 || page.Data == nil {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestList_HugePageIsPastTheEnd(t *testing.T) {
	t.Parallel()
	svc := seededService(t, scenarioLog)

	page, err := svc.List(context.Background(), LogQuery{Page: math.MaxInt, Limit: 4})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data) != 0 || page.Total != 2 || page.Page != math.MaxInt {
		t.Fatalf("expected empty page with real total, got %+v", page)
	}

	// (page-1)*limit would wrap to math.MinInt without saturation
	page, err = svc.List(context.Background(), LogQuery{Page: math.MaxInt/4 + 2, Limit: 4})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data) != 0 || page.Total != 2 {
		t.Fatalf("expected empty page with real total, got %+v", page)
	}
}

func TestPageOffset(t *testing.T) {
	cases := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{3, 5, 10},
		{math.MaxInt, 1, math.MaxInt - 1},
		{math.MaxInt, 2, math.MaxInt},
		{math.MaxInt/4 + 2, 4, math.MaxInt},
	}
	for _, tc := range cases {
		if got := pageOffset(tc.page, tc.limit); got != tc.want {
			t.Errorf("pageOffset(%d, %d) = %d; want %d", tc.page, tc.limit, got, tc.want)
		}
	}
}

func TestList_StoreErrorPropagates(t *testing.T) {
	t.Parallel()
	repo := newFakeLogRepo()
	repo.queryErr = errors.New("db gone")
	_, err := NewLogQueryService(repo, 0).List(context.Background(), LogQuery{Page: 1, Limit: 10})
	if err == nil || errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestList_PagesReconstructFullSequence(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		// a few duplicate instants to exercise tie ordering
		ts := base.Add(time.Duration(i/2) * time.Minute).Format(time.RFC3339)
		fmt.Fprintf(&b, "[%s] [VEHICLE_ID:%d] [INFO] [CODE:C%d] [msg %d]\n", ts, i%3, i, i)
	}
	svc := seededService(t, b.String())
	ctx := context.Background()

	full, err := svc.List(ctx, LogQuery{Page: 1, Limit: 1000, SortOrder: "desc"})
	if err != nil {
		t.Fatalf("List full: %v", err)
	}
	if full.Total != 23 {
		t.Fatalf("total = %d; want 23", full.Total)
	}

	var seen []models.LogEntry
	for p := 1; ; p++ {
		page, err := svc.List(ctx, LogQuery{Page: p, Limit: 4, SortOrder: "desc"})
		if err != nil {
			t.Fatalf("List page %d: %v", p, err)
		}
		if page.Total != 23 {
			t.Fatalf("page %d total = %d", p, page.Total)
		}
		want := 4
		if rest := 23 - (p-1)*4; rest < want {
			want = max(rest, 0)
		}
		if len(page.Data) != want {
			t.Fatalf("page %d len = %d; want %d", p, len(page.Data), want)
		}
		if len(page.Data) == 0 {
			break
		}
		seen = append(seen, page.Data...)
	}
	if len(seen) != len(full.Data) {
		t.Fatalf("pages yielded %d rows; want %d", len(seen), len(full.Data))
	}
	for i := range seen {
		if seen[i] != full.Data[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, seen[i], full.Data[i])
		}
	}
	for i := 1; i < len(full.Data); i++ {
		if full.Data[i-1].Timestamp < full.Data[i].Timestamp {
			t.Fatalf("not descending at %d: %s then %s", i, full.Data[i-1].Timestamp, full.Data[i].Timestamp)
		}
	}
}

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()
	payload := scenarioLog + "\n" +
		`[2024-01-01T12:00:00Z] [VEHICLE_ID:42] [INFO] [CODE:I1] [says "hi", then leaves]` + "\n" +
		`[2024-01-01T13:00:00Z] [VEHICLE_ID:7] [INFO] [CODE:I2] [other vehicle]`
	svc := seededService(t, payload)
	ctx := context.Background()

	q := LogQuery{VehicleID: "42", Sort: "timestamp", SortOrder: "desc"}
	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, q)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 3 {
		t.Fatalf("exported %d rows; want 3", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if strings.Join(records[0], ",") != "id,timestamp,vehicleId,level,code,message" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	q.Page, q.Limit = 1, 100
	page, err := svc.List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records)-1 != len(page.Data) {
		t.Fatalf("csv rows = %d; want %d", len(records)-1, len(page.Data))
	}
	for i, rec := range records[1:] {
		id, _ := strconv.ParseInt(rec[0], 10, 64)
		got := models.LogEntry{ID: id, Timestamp: rec[1], VehicleID: rec[2], Level: rec[3], Code: rec[4], Message: rec[5]}
		if got != page.Data[i] {
			t.Fatalf("row %d: %+v; want %+v", i, got, page.Data[i])
		}
	}
	if page.Data[0].Message != `says "hi", then leaves` {
		t.Fatalf("expected quoted message first, got %q", page.Data[0].Message)
	}
}

func TestExport_InvalidSort(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	_, err := NewLogQueryService(newFakeLogRepo(), 0).Export(context.Background(), &buf, LogQuery{Sort: "nope"})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on validation failure, got %q", buf.String())
	}
}

func TestCount(t *testing.T) {
	t.Parallel()
	svc := seededService(t, scenarioLog)
	n, err := svc.Count(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v; want 2", n, err)
	}

	repo := newFakeLogRepo()
	repo.countErr = errors.New("db gone")
	if _, err := NewMonitoringService(repo).Count(context.Background()); !errors.Is(err, repo.countErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()
	svc := seededService(t, scenarioLog)
	st, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if st.Total != 2 || st.ByLevel["ERROR"] != 1 || st.ByLevel["WARN"] != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	empty, err := NewMonitoringService(newFakeLogRepo()).GetStats(context.Background())
	if err != nil || empty.ByLevel == nil {
		t.Fatalf("expected non-nil ByLevel for empty store, got %+v, %v", empty, err)
	}
}
