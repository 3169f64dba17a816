package handler

import (
	"avalia_backend/internal/reports/service"
	"avalia_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for stored reports.
type Handler struct {
	svc *service.Service
}

// New creates a new reports handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the caller's reports, newest first.
// GET /api/v1/reports
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	reports, err := h.svc.List(c.Request.Context(), identity.Email())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": reports, "total": len(reports)})
}

// Get returns one of the caller's reports.
// GET /api/v1/reports/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	report, err := h.svc.Get(c.Request.Context(), identity.Email(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}
