package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kursio/kursio-backend/internal/middleware"
	"github.com/kursio/kursio-backend/internal/response"
	"github.com/kursio/kursio-backend/internal/service"
)

// ProgressHandler handles progress summary endpoints.
type ProgressHandler struct {
	progressService *service.ProgressService
	exportService   *service.ExportService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService, exportService *service.ExportService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, exportService: exportService}
}

// GetMine godoc
// GET /api/v1/progress/me
// Recalculates and returns the caller's progress summary.
func (h *ProgressHandler) GetMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	summary, err := h.progressService.GetProgress(c.Request.Context(), claims.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": summary})
}

// GetByUser godoc
// GET /api/v1/admin/progress/:id
func (h *ProgressHandler) GetByUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	summary, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": summary})
}

// RecalculateAll godoc
// POST /api/v1/admin/progress/recalculate
// Enqueues every learner for background recalculation.
func (h *ProgressHandler) RecalculateAll(c *gin.Context) {
	queued, err := h.progressService.EnqueueRecalculateAll(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"queued": queued})
}

// Reset godoc
// DELETE /api/v1/admin/progress/:id
// Wipes a learner's attempts and summary. Destructive.
func (h *ProgressHandler) Reset(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.progressService.ResetProgress(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "progress reset successfully"})
}

// DeleteAttempt godoc
// DELETE /api/v1/admin/attempts/:id
// Removes one ledger entry and resyncs the owner's summary.
func (h *ProgressHandler) DeleteAttempt(c *gin.Context) {
	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.progressService.DeleteAttempt(c.Request.Context(), attemptID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "attempt deleted successfully"})
}

// Export godoc
// GET /api/v1/admin/progress/export
// Streams the progress report as an xlsx download.
func (h *ProgressHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("progress-report-%s", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	if err := h.exportService.WriteProgressReport(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log instead of switching to a JSON body.
		log.Error().Err(err).Msg("Progress export failed")
	}
}
