package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/parser"
	"github.com/AshishJayaram/log-reader-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errPageInvalid  = "'page' must be an integer"
	errLimitInvalid = "'limit' must be an integer"

	errLoadLogs   = "failed to load logs"
	errExportLogs = "failed to export logs"
	errLoadStats  = "failed to load stats"
	errLoadBatch  = "failed to load upload history"
)

// queryError is a 400-class problem with the request's query string.
type queryError struct{ msg string }

func (e queryError) Error() string { return e.msg }

// parseFilterQuery reads filter and sort parameters shared by list and export.
func parseFilterQuery(c *gin.Context) (service.LogQuery, error) {
	q := service.LogQuery{
		VehicleID: c.Query("vehicleId"),
		Level:     c.Query("level"),
		Code:      c.Query("code"),
		Sort:      c.DefaultQuery("sort", service.DefaultSort),
		SortOrder: c.DefaultQuery("sortOrder", service.DefaultSortOrder),
	}

	if qs := c.Query("from"); qs != "" {
		from, err := parser.ParseTimestamp(qs)
		if err != nil {
			return service.LogQuery{}, queryError{errFromInvalid}
		}
		q.From = from
	}
	if qs := c.Query("to"); qs != "" {
		to, err := parser.ParseRangeEnd(qs)
		if err != nil {
			return service.LogQuery{}, queryError{errToInvalid}
		}
		q.To = to
	}
	return q, nil
}

// parseListQuery adds pagination to parseFilterQuery.
func parseListQuery(c *gin.Context) (service.LogQuery, error) {
	q, err := parseFilterQuery(c)
	if err != nil {
		return q, err
	}
	if q.Page, err = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(service.DefaultPage))); err != nil {
		return service.LogQuery{}, queryError{errPageInvalid}
	}
	if q.Limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultLimit))); err != nil {
		return service.LogQuery{}, queryError{errLimitInvalid}
	}
	return q, nil
}

// respondQueryFailure maps caller mistakes to 400 and everything else to 500.
func (h *Handler) respondQueryFailure(c *gin.Context, err error, userMsg, logKey string) {
	var qe queryError
	if errors.As(err, &qe) || errors.Is(err, service.ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err)
}

// @Summary      List logs
// @Description  Filtered, sorted, paginated logs. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' is end-of-day inclusive.
// @Tags         logs
// @Produce      json
// @Param        page       query  int     false  "1-based page"  default(1)
// @Param        limit      query  int     false  "Page size"     default(10)
// @Param        vehicleId  query  string  false  "Exact vehicle id"
// @Param        level      query  string  false  "Exact level"
// @Param        code       query  string  false  "Exact diagnostic code"
// @Param        from       query  string  false  "Start of range (inclusive)"  example(2024-01-01T00:00:00Z)
// @Param        to         query  string  false  "End of range (inclusive)"    example(2024-01-31)
// @Param        sort       query  string  false  "Sort field"  Enums(id,timestamp,vehicleId,level,code,message)  default(timestamp)
// @Param        sortOrder  query  string  false  "Sort order"  Enums(asc,desc)  default(asc)
// @Success      200  {object}  service.Page
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		h.respondQueryFailure(c, err, errLoadLogs, "logs_list_failed")
		return
	}
	page, err := h.services.List(c.Request.Context(), q)
	if err != nil {
		h.respondQueryFailure(c, err, errLoadLogs, "logs_list_failed")
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary      Export logs as CSV
// @Description  Same filters and sort as the list endpoint, without pagination.
// @Tags         logs
// @Produce      text/csv
// @Param        vehicleId  query  string  false  "Exact vehicle id"
// @Param        level      query  string  false  "Exact level"
// @Param        code       query  string  false  "Exact diagnostic code"
// @Param        from       query  string  false  "Start of range (inclusive)"
// @Param        to         query  string  false  "End of range (inclusive)"
// @Param        sort       query  string  false  "Sort field"  default(timestamp)
// @Param        sortOrder  query  string  false  "Sort order"  Enums(asc,desc)  default(asc)
// @Success      200  {string}  string  "CSV document"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs/export [get]
func (h *Handler) exportLogs(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		h.respondQueryFailure(c, err, errExportLogs, "logs_export_failed")
		return
	}

	// Buffer so a failure can still produce a JSON error instead of a truncated file.
	var buf bytes.Buffer
	rows, err := h.services.Export(c.Request.Context(), &buf, q)
	if err != nil {
		h.respondQueryFailure(c, err, errExportLogs, "logs_export_failed")
		return
	}

	filename := fmt.Sprintf("vehicle_logs_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Total-Count", strconv.Itoa(rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// @Summary      Upload history
// @Description  Ingestion runs that stored at least one line, oldest first.
// @Tags         logs
// @Produce      json
// @Param        from  query  string  false  "Uploaded at or after"
// @Param        to    query  string  false  "Uploaded at or before"
// @Success      200  {array}   models.UploadBatch
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs/batches [get]
func (h *Handler) getBatches(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		h.respondQueryFailure(c, err, errLoadBatch, "logs_batches_failed")
		return
	}
	batches, err := h.services.Batches(c.Request.Context(), q.From, q.To)
	if err != nil {
		h.respondQueryFailure(c, err, errLoadBatch, "logs_batches_failed")
		return
	}
	c.JSON(http.StatusOK, batches)
}

// @Summary      Store statistics
// @Tags         logs
// @Produce      json
// @Success      200  {object}  models.LogStats
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	st, err := h.services.GetStats(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadStats, "logs_stats_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
