// Package reports provides the per-user report history HTTP module.
package reports

import (
	apphttp "avalia_backend/internal/http"
	"avalia_backend/internal/reports/handler"
	"avalia_backend/internal/reports/repository"
	"avalia_backend/internal/reports/service"
	"avalia_backend/platform/logger"
)

// Module is the reports bounded context.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the module around the selected backend.
func NewModule(repo repository.Repository, log *logger.Logger) *Module {
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Service exposes the report service for the orchestrator and the exporter.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes registers the reports routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	reports := ctx.Protected.Group("/reports")
	reports.GET("", m.handler.List)
	reports.GET("/:id", m.handler.Get)
}

var _ apphttp.Module = (*Module)(nil)
