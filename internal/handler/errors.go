package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kursio/kursio-backend/internal/response"
	"github.com/kursio/kursio-backend/internal/service"
)

// handleServiceError maps service sentinel errors onto the API error codes.
// Anything unmapped is logged and reported as a 500.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrInvalidState):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotInProgress)
	case errors.Is(err, service.ErrVideoLocked):
		response.Fail(c, http.StatusForbidden, response.ErrVideoLocked)
	case errors.Is(err, service.ErrAttemptLimitExceeded):
		response.Fail(c, http.StatusConflict, response.ErrAttemptLimitExceeded)
	case errors.Is(err, service.ErrAlreadyExists):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrNotEligible):
		response.Fail(c, http.StatusConflict, response.ErrNotEligible)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
