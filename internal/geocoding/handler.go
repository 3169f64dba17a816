package geocoding

import (
	"net/http"

	"avalia_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const suggestionLimit = 5

// Handler exposes the address lookup endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Search handles GET /api/v1/geocoding/search?q=...
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	results, err := h.svc.Suggest(c.Request.Context(), req.Query, suggestionLimit)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address lookup service unavailable", nil)
		return
	}

	httpkit.OK(c, gin.H{"results": results})
}
