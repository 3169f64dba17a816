// Package pdf exports stored valuation reports as PDF documents rendered
// by Gotenberg and cached in object storage.
package pdf

import (
	"context"
	"fmt"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

const (
	msgRenderFailed = "could not render pdf"
	renderTimeout   = 90 * time.Second
)

// Converter turns an HTML page into a PDF.
type Converter interface {
	ConvertHTML(ctx context.Context, indexHTML []byte) ([]byte, error)
}

// ReportReader loads one of a user's stored reports.
type ReportReader interface {
	Get(ctx context.Context, email, id string) (domain.Report, error)
}

// Exporter renders reports to PDF. Concurrent exports of the same report
// share one render. store may be nil, in which case every export renders.
type Exporter struct {
	reports   ReportReader
	converter Converter
	store     ObjectStore
	log       *logger.Logger
	group     singleflight.Group
}

func NewExporter(reports ReportReader, converter Converter, store ObjectStore, log *logger.Logger) *Exporter {
	return &Exporter{
		reports:   reports,
		converter: converter,
		store:     store,
		log:       log,
	}
}

// Export returns the PDF of the user's report.
func (e *Exporter) Export(ctx context.Context, email, reportID string) ([]byte, error) {
	report, err := e.reports.Get(ctx, email, reportID)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(email, reportID)
	v, err, _ := e.group.Do(key, func() (any, error) {
		renderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renderTimeout)
		defer cancel()
		return e.render(renderCtx, key, report)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (e *Exporter) render(ctx context.Context, key string, report domain.Report) ([]byte, error) {
	log := e.log.WithContext(ctx)

	if e.store != nil {
		data, ok, err := e.store.Get(ctx, key)
		if err != nil {
			log.StorageError("get pdf", key, err)
		} else if ok {
			return data, nil
		}
	}

	page, err := RenderHTML(report)
	if err != nil {
		return nil, apperr.Internal(msgRenderFailed, err)
	}
	data, err := e.converter.ConvertHTML(ctx, page)
	if err != nil {
		log.UpstreamError("gotenberg", "convert html", err)
		return nil, apperr.Upstream(msgRenderFailed, err)
	}

	if e.store != nil {
		if err := e.store.Put(ctx, key, data); err != nil {
			log.StorageError("put pdf", key, err)
		}
	}
	return data, nil
}

// Subscribe warms the cache for every report that was stored for a user.
func (e *Exporter) Subscribe(bus events.Bus) {
	bus.Subscribe(events.ValuationCompleted{}.EventName(), events.HandlerFunc(e.handleValuationCompleted))
}

func (e *Exporter) handleValuationCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.ValuationCompleted)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if !completed.Persisted || completed.Email == "" || e.store == nil {
		return nil
	}
	if _, err := e.Export(ctx, completed.Email, completed.ReportID.String()); err != nil {
		return fmt.Errorf("warm pdf cache: %w", err)
	}
	return nil
}
