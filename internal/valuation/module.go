// Package valuation provides the valuation orchestrator HTTP module.
package valuation

import (
	"time"

	"avalia_backend/internal/events"
	apphttp "avalia_backend/internal/http"
	"avalia_backend/internal/valuation/handler"
	"avalia_backend/internal/valuation/service"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"
)

// Module is the valuation bounded context.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the orchestrator around a generator and a report store.
func NewModule(generator service.Generator, reports service.ReportAppender, timeout time.Duration, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(generator, reports, val, eventBus, timeout, log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Service exposes the orchestrator; the wizard submits through it.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "valuation"
}

// RegisterRoutes registers the valuation routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	valuations := ctx.V1.Group("/valuations")
	valuations.GET("/sample", m.handler.Sample)
	valuations.POST("", ctx.OptionalAuth, ctx.ValuationRateLimiter.RateLimit(), m.handler.Submit)
}

var _ apphttp.Module = (*Module)(nil)
