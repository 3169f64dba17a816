package pdf

import (
	"avalia_backend/internal/events"
	apphttp "avalia_backend/internal/http"
	"avalia_backend/platform/logger"
)

// Module is the report export bounded context.
type Module struct {
	handler  *Handler
	exporter *Exporter
}

// NewModule wires export. converter nil disables the feature; store nil
// disables caching.
func NewModule(reports ReportReader, converter Converter, store ObjectStore, eventBus events.Bus, log *logger.Logger) *Module {
	if converter == nil {
		return &Module{handler: NewHandler(nil)}
	}

	exporter := NewExporter(reports, converter, store, log)
	exporter.Subscribe(eventBus)
	return &Module{
		handler:  NewHandler(exporter),
		exporter: exporter,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "pdf"
}

// RegisterRoutes registers the export route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/reports/:id/pdf", m.handler.Download)
}

var _ apphttp.Module = (*Module)(nil)
