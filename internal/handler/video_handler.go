package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kursio/kursio-backend/internal/middleware"
	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/response"
	"github.com/kursio/kursio-backend/internal/service"
	"github.com/kursio/kursio-backend/internal/validator"
)

// VideoHandler handles lecture video endpoints, learner and admin sides.
type VideoHandler struct {
	videoService *service.VideoService
	gateService  *service.GateService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videoService *service.VideoService, gateService *service.GateService) *VideoHandler {
	return &VideoHandler{videoService: videoService, gateService: gateService}
}

// GetLobby godoc
// GET /api/v1/videos
// Returns active videos in course order, each annotated with the caller's
// unlock state.
func (h *VideoHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	videos, err := h.gateService.ListWithLockState(c.Request.Context(), claims.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"videos": videos})
}

// CanAttempt godoc
// GET /api/v1/videos/:id/can-attempt
// Returns the gate verdict for the caller on this video.
func (h *VideoHandler) CanAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	videoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	decision, err := h.gateService.CanAttempt(c.Request.Context(), claims.UserID, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"decision": decision})
}

// GetAll godoc
// GET /api/v1/admin/videos
// Includes inactive videos.
func (h *VideoHandler) GetAll(c *gin.Context) {
	videos, err := h.videoService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if videos == nil {
		videos = []model.Video{}
	}
	response.Success(c, http.StatusOK, gin.H{"videos": videos})
}

// GetByID godoc
// GET /api/v1/admin/videos/:id
func (h *VideoHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	video, err := h.videoService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"video": video})
}

// Create godoc
// POST /api/v1/admin/videos
func (h *VideoHandler) Create(c *gin.Context) {
	var req model.CreateVideoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	video, err := h.videoService.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"video": video})
}

// Update godoc
// PUT /api/v1/admin/videos/:id
func (h *VideoHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateVideoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	video, err := h.videoService.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"video": video})
}

// Delete godoc
// DELETE /api/v1/admin/videos/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "video deleted successfully"})
}
