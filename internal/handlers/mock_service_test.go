package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockIngestion struct {
	res    service.IngestResult
	err    error
	body   string
	source string
	calls  int

	batches    []models.UploadBatch
	batchesErr error
	gotFrom    time.Time
	gotTo      time.Time
}

func (m *mockIngestion) Ingest(_ context.Context, source string, r io.Reader) (service.IngestResult, error) {
	m.calls++
	m.source = source
	b, _ := io.ReadAll(r)
	m.body = string(b)
	return m.res, m.err
}

func (m *mockIngestion) Batches(_ context.Context, from, to time.Time) ([]models.UploadBatch, error) {
	m.gotFrom, m.gotTo = from, to
	return m.batches, m.batchesErr
}

type mockLogs struct {
	page    service.Page
	listErr error
	csv     string
	rows    int
	expErr  error

	lastQuery service.LogQuery
	listCalls int
	expCalls  int
}

func (m *mockLogs) List(_ context.Context, q service.LogQuery) (service.Page, error) {
	m.listCalls++
	m.lastQuery = q
	return m.page, m.listErr
}

func (m *mockLogs) Export(_ context.Context, w io.Writer, q service.LogQuery) (int, error) {
	m.expCalls++
	m.lastQuery = q
	if m.expErr != nil {
		return 0, m.expErr
	}
	_, err := io.WriteString(w, m.csv)
	return m.rows, err
}

type mockMonitoring struct {
	stats models.LogStats
	err   error

	count    int
	countErr error
}

func (m *mockMonitoring) GetStats(context.Context) (models.LogStats, error) {
	return m.stats, m.err
}

func (m *mockMonitoring) Count(context.Context) (int, error) {
	return m.count, m.countErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, 0)
	return h.InitRoutes()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
