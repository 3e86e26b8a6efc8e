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

// QuizHandler handles quiz attempt endpoints.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// Start godoc
// POST /api/v1/attempts
// Starts (or resumes) a quiz attempt on a video.
func (h *QuizHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.quizService.StartAttempt(c.Request.Context(), claims.UserID, req.VideoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// SubmitAnswer godoc
// POST /api/v1/attempts/:id/answers
// Records one answer. Resubmission overwrites the previous selection.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err = h.quizService.SubmitAnswer(c.Request.Context(), claims.UserID, attemptID, req.QuestionID, req.AnswerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "answer recorded"})
}

// Finish godoc
// POST /api/v1/attempts/:id/finish
// Finalizes the attempt and returns it with the score.
func (h *QuizHandler) Finish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.quizService.Finish(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// UpdateTimer godoc
// PUT /api/v1/attempts/:id/timer
// Persists the client-reported remaining seconds; finalizes as timed_out at 0.
func (h *QuizHandler) UpdateTimer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateTimerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.quizService.UpdateTimer(c.Request.Context(), claims.UserID, attemptID, *req.TimeRemaining)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetState godoc
// GET /api/v1/attempts/:id/state
// Returns timer and answered counts for a resuming quiz page.
func (h *QuizHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.quizService.GetState(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// GetResult godoc
// GET /api/v1/attempts/:id
// Returns an attempt with its answer records.
func (h *QuizHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, answers, err := h.quizService.GetResult(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"attempt": attempt,
		"answers": answers,
	})
}

// ListByVideo godoc
// GET /api/v1/videos/:id/attempts
// Returns the caller's attempts on one video, oldest first.
func (h *QuizHandler) ListByVideo(c *gin.Context) {
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

	attempts, err := h.quizService.ListAttempts(c.Request.Context(), claims.UserID, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if attempts == nil {
		attempts = []model.QuizAttempt{}
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
