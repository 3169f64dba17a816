package handler

import (
	"net/http"

	"avalia_backend/internal/valuation/domain"
	"avalia_backend/internal/valuation/service"
	"avalia_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for direct valuations.
type Handler struct {
	svc *service.Service
}

// New creates a new valuation handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Submit values a complete payload without going through a wizard.
// POST /api/v1/valuations
func (h *Handler) Submit(c *gin.Context) {
	var payload domain.FormPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	report, err := h.svc.Submit(c.Request.Context(), httpkit.GetIdentity(c).Email(), payload)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, report)
}

// Sample returns the fixed demonstration report.
// GET /api/v1/valuations/sample
func (h *Handler) Sample(c *gin.Context) {
	httpkit.OK(c, service.Sample())
}
