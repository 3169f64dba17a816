package locations

import (
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves the state and city lists for the location dropdowns.
type Handler struct {
	table *Table
}

func NewHandler(table *Table) *Handler {
	return &Handler{table: table}
}

// ListStates handles GET /api/v1/locations/states
func (h *Handler) ListStates(c *gin.Context) {
	httpkit.OK(c, gin.H{"states": h.table.States()})
}

// ListCities handles GET /api/v1/locations/states/:code/cities
func (h *Handler) ListCities(c *gin.Context) {
	state, ok := h.table.Lookup(c.Param("code"))
	if !ok {
		httpkit.HandleError(c, apperr.NotFound("estado desconhecido"))
		return
	}
	httpkit.OK(c, gin.H{"state": state.Code, "cities": h.table.CitiesOf(state.Code)})
}
