package locations

import (
	apphttp "avalia_backend/internal/http"
)

// Module wires the location reference routes.
type Module struct {
	handler *Handler
}

func NewModule(table *Table) *Module {
	return &Module{handler: NewHandler(table)}
}

func (m *Module) Name() string {
	return "locations"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/locations")
	group.GET("/states", m.handler.ListStates)
	group.GET("/states/:code/cities", m.handler.ListCities)
}

var _ apphttp.Module = (*Module)(nil)
