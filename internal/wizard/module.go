// Package wizard provides the valuation wizard HTTP module.
package wizard

import (
	"context"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/geocoding"
	apphttp "avalia_backend/internal/http"
	"avalia_backend/internal/locations"
	"avalia_backend/internal/wizard/handler"
	"avalia_backend/internal/wizard/service"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"
)

const sweepInterval = time.Minute

// Module is the wizard bounded context.
type Module struct {
	handler *handler.Handler
	store   *service.MemoryStore
	service *service.Service
}

// NewModule wires the wizard with an in-memory session store.
func NewModule(ttl time.Duration, geocoder geocoding.Geocoder, table *locations.Table, submitter service.Submitter, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	store := service.NewMemoryStore(ttl)
	svc := service.New(store, geocoder, table, submitter, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		store:   store,
		service: svc,
	}
}

// Service exposes the wizard service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RunSweeper drops idle wizards until ctx is done.
func (m *Module) RunSweeper(ctx context.Context) {
	m.store.Run(ctx, sweepInterval)
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "wizard"
}

// RegisterRoutes registers the wizard routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	wizards := ctx.V1.Group("/wizards")
	wizards.POST("", m.handler.Create)
	wizards.GET("/:id", m.handler.Get)
	wizards.DELETE("/:id", m.handler.Discard)

	wizards.PUT("/:id/location/address", m.handler.SetAddress)
	wizards.PUT("/:id/location/state", m.handler.SelectState)
	wizards.PUT("/:id/location/city", m.handler.SelectCity)
	wizards.POST("/:id/location/locate", m.handler.Locate)
	wizards.PUT("/:id/location/marker", m.handler.MoveMarker)

	wizards.PUT("/:id/property-type", m.handler.SetPropertyType)
	wizards.PATCH("/:id/fields", m.handler.SetFields)
	wizards.PUT("/:id/features", m.handler.SetFeatures)

	wizards.POST("/:id/next", m.handler.Next)
	wizards.POST("/:id/back", m.handler.Back)
	wizards.POST("/:id/submit", ctx.OptionalAuth, ctx.ValuationRateLimiter.RateLimit(), m.handler.Submit)
}

var _ apphttp.Module = (*Module)(nil)
