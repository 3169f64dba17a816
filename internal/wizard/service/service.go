// Package service implements the valuation wizard: a three-step form whose
// location step stays in sync with the geocoder.
package service

import (
	"context"
	"strings"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/geocoding"
	"avalia_backend/internal/locations"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/internal/wizard/transport"
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgWizardNotFound   = "wizard not found"
	msgStepInvalid      = "Existem campos inválidos nesta etapa."
	msgSubmitNotAllowed = "O envio só é possível na última etapa."
	msgAlreadyRunning   = "Uma avaliação já está em andamento."
)

// Submitter hands a validated payload to the valuation orchestrator.
// email is empty for anonymous users.
type Submitter interface {
	Submit(ctx context.Context, email string, payload domain.FormPayload) (domain.Report, error)
}

// Service drives wizard sessions.
type Service struct {
	store     Store
	geocoder  geocoding.Geocoder
	table     *locations.Table
	submitter Submitter
	eventBus  events.Bus
	log       *logger.Logger
	now       func() time.Time
}

func New(store Store, geocoder geocoding.Geocoder, table *locations.Table, submitter Submitter, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		geocoder:  geocoder,
		table:     table,
		submitter: submitter,
		eventBus:  eventBus,
		log:       log,
		now:       time.Now,
	}
}

// Create starts a session at step 1.
func (s *Service) Create(ctx context.Context) Snapshot {
	w := newWizard(s.now())
	s.store.Save(w)
	s.log.WithContext(ctx).Debug("wizard created", "wizard_id", w.ID())

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// Get returns the current state.
func (s *Service) Get(_ context.Context, id uuid.UUID) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot(), nil
}

// Discard drops the session.
func (s *Service) Discard(_ context.Context, id uuid.UUID) error {
	if _, err := s.wizard(id); err != nil {
		return err
	}
	s.store.Delete(id)
	return nil
}

// SetPropertyType records the step-2 choice.
func (s *Service) SetPropertyType(_ context.Context, id uuid.UUID, raw string) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}
	pt, ok := domain.ParsePropertyType(raw)
	if !ok {
		return Snapshot{}, apperr.Validation(msgStepInvalid, map[string]string{FieldPropertyType: msgInvalidPropertyType})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.propertyType = pt
	w.clearError(FieldPropertyType)
	w.touch(s.now())
	return w.snapshot(), nil
}

// SetFields edits step-3 fields. Each edited field loses its error.
func (s *Service) SetFields(_ context.Context, id uuid.UUID, req transport.FieldsRequest) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	set := func(field string, dst *string, v *string) {
		if v == nil {
			return
		}
		*dst = *v
		w.clearError(field)
	}
	set(FieldArea, &w.details.Area, req.Area)
	set(FieldBedrooms, &w.details.Bedrooms, req.Bedrooms)
	set(FieldSuites, &w.details.Suites, req.Suites)
	set(FieldBathrooms, &w.details.Bathrooms, req.Bathrooms)
	set(FieldParkingSpaces, &w.details.ParkingSpaces, req.ParkingSpaces)
	set(FieldConservationState, &w.details.ConservationState, req.ConservationState)
	w.touch(s.now())
	return w.snapshot(), nil
}

// SetFeatures replaces the feature tags, keeping order and dropping blanks.
func (s *Service) SetFeatures(_ context.Context, id uuid.UUID, features []string) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}

	tags := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			tags = append(tags, f)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.features = tags
	w.clearError(FieldFeatures)
	w.touch(s.now())
	return w.snapshot(), nil
}

// Next validates the current step and advances.
func (s *Service) Next(_ context.Context, id uuid.UUID) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	errs := w.next()
	w.touch(s.now())
	if len(errs) > 0 {
		return w.snapshot(), apperr.Validation(msgStepInvalid, copyErrors(errs))
	}
	return w.snapshot(), nil
}

// Back moves one step back.
func (s *Service) Back(_ context.Context, id uuid.UUID) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.back()
	w.touch(s.now())
	return w.snapshot(), nil
}

// Submit re-validates step 3, assembles the payload and hands it to the
// orchestrator. Only one submission per wizard can be in flight. On success
// the wizard is discarded; on failure it can be submitted again.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, email string) (domain.Report, error) {
	w, err := s.wizard(id)
	if err != nil {
		return domain.Report{}, err
	}

	w.mu.Lock()
	if w.step != StepCharacteristics {
		w.mu.Unlock()
		return domain.Report{}, apperr.Conflict(msgSubmitNotAllowed)
	}
	if w.submitting {
		w.mu.Unlock()
		return domain.Report{}, apperr.Conflict(msgAlreadyRunning)
	}
	errs := w.validateStep(StepCharacteristics)
	w.errors = errs
	if len(errs) > 0 {
		w.touch(s.now())
		w.mu.Unlock()
		return domain.Report{}, apperr.Validation(msgStepInvalid, copyErrors(errs))
	}
	payload := w.payload()
	w.submitting = true
	w.touch(s.now())
	w.mu.Unlock()

	report, err := s.submitter.Submit(ctx, email, payload)

	if err != nil {
		w.mu.Lock()
		w.submitting = false
		for field, msg := range apperr.FieldErrors(err) {
			field, _, _ = strings.Cut(field, "[")
			w.errors[field] = msg
		}
		w.touch(s.now())
		w.mu.Unlock()
		return domain.Report{}, err
	}

	s.store.Delete(id)
	if reportID, parseErr := uuid.Parse(report.ID); parseErr == nil {
		s.eventBus.Publish(ctx, events.WizardSubmitted{
			BaseEvent: events.NewBaseEvent(),
			WizardID:  id,
			ReportID:  reportID,
		})
	}
	return report, nil
}

func (s *Service) wizard(id uuid.UUID) (*Wizard, error) {
	w, ok := s.store.Get(id)
	if !ok {
		return nil, apperr.NotFound(msgWizardNotFound)
	}
	return w, nil
}

func copyErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
