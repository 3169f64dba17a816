package pdf

import (
	"fmt"
	"net/http"

	"avalia_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgExportDisabled = "pdf export disabled"

// Handler handles HTTP requests for PDF export.
type Handler struct {
	exporter *Exporter
}

// NewHandler creates a handler; exporter is nil when export is disabled.
func NewHandler(exporter *Exporter) *Handler {
	return &Handler{exporter: exporter}
}

// Download streams the PDF of one of the caller's reports.
// GET /api/v1/reports/:id/pdf
func (h *Handler) Download(c *gin.Context) {
	if h.exporter == nil {
		httpkit.Error(c, http.StatusNotFound, msgExportDisabled, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id := c.Param("id")
	data, err := h.exporter.Export(c.Request.Context(), identity.Email(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="avaliacao-%s.pdf"`, id))
	c.Data(http.StatusOK, contentTypePDF, data)
}
