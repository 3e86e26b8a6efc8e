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
)

// CertificateHandler handles completion certificate endpoints.
type CertificateHandler struct {
	certService *service.CertificateService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certService *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certService: certService}
}

// GetMine godoc
// GET /api/v1/certificates/me
func (h *CertificateHandler) GetMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	cert, err := h.certService.GetMine(c.Request.Context(), claims.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificate": cert})
}

// Generate godoc
// POST /api/v1/certificates
// Issues the caller's certificate once the whole course is passed.
func (h *CertificateHandler) Generate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	cert, err := h.certService.Generate(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyExists) {
			response.Fail(c, http.StatusConflict, response.ErrCertificateExists)
			return
		}
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"certificate": cert})
}

// Download godoc
// POST /api/v1/certificates/:id/download
// Marks the certificate downloaded and returns it for rendering.
func (h *CertificateHandler) Download(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	certID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	cert, err := h.certService.Download(c.Request.Context(), claims.UserID, certID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificate": cert})
}

// GetAll godoc
// GET /api/v1/admin/certificates
func (h *CertificateHandler) GetAll(c *gin.Context) {
	certs, err := h.certService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if certs == nil {
		certs = []model.Certificate{}
	}
	response.Success(c, http.StatusOK, gin.H{"certificates": certs})
}
