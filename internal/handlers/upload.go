package handlers

import (
	"errors"
	"net/http"

	"github.com/AshishJayaram/log-reader-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgUploaded = "Logs uploaded successfully"

	errNoFile       = "no file uploaded"
	errTooLarge     = "upload exceeds size limit"
	errOpenUpload   = "failed to read uploaded file"
	errIngestFailed = "failed to store logs"
)

// @Summary      Upload a log file
// @Description  Multipart field "file"; plain text, gzip or zstd. Lines that do not match the log format are skipped.
// @Tags         logs
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Diagnostic log file"
// @Success      200  {object}  map[string]interface{}  "message, batchId, count, skipped, lines, total"
// @Failure      400  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs/upload [post]
func (h *Handler) uploadLogs(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errTooLarge})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoFile})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errOpenUpload, "logs_upload_open_failed", err, "filename", fh.Filename)
		return
	}
	defer func() { _ = f.Close() }()

	ctx := c.Request.Context()
	res, err := h.services.Ingest(ctx, fh.Filename, f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errIngestFailed, "logs_upload_failed", err,
			"filename", fh.Filename, "batch_id", res.BatchID, "stored", res.Stored)
		return
	}

	if h.log != nil {
		h.log.Infow("logs_uploaded", "filename", fh.Filename, "batch_id", res.BatchID,
			"lines", res.Lines, "stored", res.Stored, "skipped", res.Skipped)
	}

	resp := gin.H{
		"message": msgUploaded,
		"batchId": res.BatchID,
		"count":   res.Stored,
		"skipped": res.Skipped,
		"lines":   res.Lines,
	}
	// best-effort store-wide total
	if n, err := h.services.Count(ctx); err == nil {
		resp["total"] = n
	}
	c.JSON(http.StatusOK, resp)
}
