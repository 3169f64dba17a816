package geocoding

import (
	apphttp "avalia_backend/internal/http"
)

// Module wires the address lookup HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(svc *Service) *Module {
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) Name() string {
	return "geocoding"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/geocoding")
	group.GET("/search", m.handler.Search)
}

var _ apphttp.Module = (*Module)(nil)
