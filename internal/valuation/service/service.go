// Package service turns a validated property description into a valuation
// report by prompting the generative model.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	msgValuationFailed = "Falha ao avaliar o imóvel. Por favor, tente novamente."
	msgInvalidPayload  = "Dados do imóvel inválidos."

	storeTimeout = 5 * time.Second
)

// ErrValuationFailed is wrapped by every transport, parse or schema failure
// of the generative model.
var ErrValuationFailed = errors.New("valuation failed")

// ReportAppender persists a finished report for a signed-in user.
type ReportAppender interface {
	Append(ctx context.Context, email string, report domain.Report) error
}

// Service orchestrates one valuation request.
type Service struct {
	generator Generator
	reports   ReportAppender
	val       *validator.Validator
	eventBus  events.Bus
	log       *logger.Logger
	timeout   time.Duration
	now       func() time.Time
}

func New(generator Generator, reports ReportAppender, val *validator.Validator, eventBus events.Bus, timeout time.Duration, log *logger.Logger) *Service {
	return &Service{
		generator: generator,
		reports:   reports,
		val:       val,
		eventBus:  eventBus,
		log:       log,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Submit values payload. email is empty for anonymous users, whose reports
// are returned but not stored. A storage failure is logged and the report is
// still returned.
func (s *Service) Submit(ctx context.Context, email string, payload domain.FormPayload) (domain.Report, error) {
	payload = payload.Normalize()
	if err := s.val.Struct(payload); err != nil {
		return domain.Report{}, apperr.Validation(msgInvalidPayload, validator.FieldErrors(err))
	}

	log := s.log.WithContext(ctx)
	now := s.now()

	result, err := s.evaluate(ctx, payload, now)
	if err != nil {
		log.UpstreamError("gemini", "valuation", err)
		return domain.Report{}, apperr.Upstream(msgValuationFailed, fmt.Errorf("%w: %w", ErrValuationFailed, err))
	}

	report := domain.NewReport(payload, result, now)
	persisted := s.persist(ctx, email, report)

	reportID, _ := uuid.Parse(report.ID)
	s.eventBus.Publish(ctx, events.ValuationCompleted{
		BaseEvent:          events.NewBaseEvent(),
		ReportID:           reportID,
		Email:              email,
		City:               result.City,
		EstimatedSalePrice: result.SalePrice.Estimated,
		Persisted:          persisted,
	})

	log.Info("valuation completed", "report_id", report.ID, "city", result.City, "persisted", persisted)
	return report, nil
}

func (s *Service) evaluate(ctx context.Context, payload domain.FormPayload, now time.Time) (domain.ValuationResult, error) {
	prompt, err := BuildPrompt(payload, now)
	if err != nil {
		return domain.ValuationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.ValuationResult{}, err
	}

	result, err := ParseResult([]byte(text))
	if err != nil {
		return domain.ValuationResult{}, err
	}
	if result.GeneratedDate == "" {
		result.GeneratedDate = now.Format(domain.DateLayout)
	}
	return result, nil
}

func (s *Service) persist(ctx context.Context, email string, report domain.Report) bool {
	if email == "" || s.reports == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if err := s.reports.Append(ctx, email, report); err != nil {
		s.log.WithContext(ctx).StorageError("append report", email, err)
		return false
	}
	return true
}
