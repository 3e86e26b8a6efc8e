package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kursio/kursio-backend/internal/middleware"
	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/response"
	"github.com/kursio/kursio-backend/internal/service"
	"github.com/kursio/kursio-backend/internal/validator"
)

// QuestionHandler handles quiz question endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	gateService     *service.GateService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, gateService *service.GateService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, gateService: gateService}
}

// GetForLearner godoc
// GET /api/v1/videos/:id/questions
// Returns the quiz questions without correctness flags. The video must be
// unlocked for the caller.
func (h *QuestionHandler) GetForLearner(c *gin.Context) {
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

	unlocked, err := h.gateService.IsUnlocked(c.Request.Context(), claims.UserID, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !unlocked {
		response.Fail(c, http.StatusForbidden, response.ErrVideoLocked)
		return
	}

	questions, err := h.questionService.ListForLearner(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetAll godoc
// GET /api/v1/admin/videos/:id/questions
// Admin view, includes correctness flags.
func (h *QuestionHandler) GetAll(c *gin.Context) {
	videoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListByVideo(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if questions == nil {
		questions = []model.Question{}
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Create godoc
// POST /api/v1/admin/videos/:id/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	videoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), videoID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoCorrectAnswer) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"answers": err.Error()})
			return
		}
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}
