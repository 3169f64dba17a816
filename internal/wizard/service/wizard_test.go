package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/apperr"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestCreateStartsAtStepOne(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	snap := svc.Create(context.Background())
	if snap.CurrentStep != StepLocation {
		t.Fatalf("expected step 1, got %d", snap.CurrentStep)
	}
	if snap.PropertyType != domain.PropertyApartment || snap.Details.ConservationState != "good" {
		t.Fatalf("unexpected defaults %+v", snap)
	}
	if snap.Location.Geohash == "" {
		t.Fatal("expected initial marker geohash")
	}
}

func TestNextFromStepOneWithoutAddressStays(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	id := svc.Create(ctx).ID

	snap, err := svc.Next(ctx, id)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if snap.CurrentStep != StepLocation {
		t.Fatalf("expected to stay on step 1, got %d", snap.CurrentStep)
	}
	if got := apperr.FieldErrors(err)[FieldAddress]; got != "O endereço é obrigatório." {
		t.Fatalf("unexpected address message %q", got)
	}

	snap, _ = svc.SetFreeTextAddress(ctx, id, "Rua Augusta")
	if _, ok := snap.ValidationErrors[FieldAddress]; ok {
		t.Fatal("editing the address must clear its error")
	}
}

func TestBackFloorsAndNextCaps(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	id := svc.Create(ctx).ID

	snap, _ := svc.Back(ctx, id)
	if snap.CurrentStep != StepLocation {
		t.Fatalf("back must floor at 1, got %d", snap.CurrentStep)
	}

	advanceToStep3(t, svc, id)
	fillDetails(t, svc, id)
	snap, err := svc.Next(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.CurrentStep != StepCharacteristics {
		t.Fatalf("next must cap at 3, got %d", snap.CurrentStep)
	}

	snap, _ = svc.Back(ctx, id)
	if snap.CurrentStep != StepPropertyType {
		t.Fatalf("expected step 2, got %d", snap.CurrentStep)
	}
}

func TestNextOnStepThreeReportsDetailErrors(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	id := svc.Create(ctx).ID
	advanceToStep3(t, svc, id)

	d := validDetails()
	d.Area = "0"
	d.Suites = "-2"
	if _, err := svc.SetFields(ctx, id, fieldsRequest(d)); err != nil {
		t.Fatalf("set fields: %v", err)
	}

	snap, err := svc.Next(ctx, id)
	fields := apperr.FieldErrors(err)
	if fields[FieldArea] != "Área inválida." || fields[FieldSuites] != "Número inválido." {
		t.Fatalf("unexpected errors %v", fields)
	}
	if diff := cmp.Diff(fields, snap.ValidationErrors); diff != "" {
		t.Fatalf("snapshot errors differ (-returned +snapshot):\n%s", diff)
	}

	snap, _ = svc.SetFields(ctx, id, fieldsRequestArea("85"))
	if _, ok := snap.ValidationErrors[FieldArea]; ok {
		t.Fatal("editing area must clear its error")
	}
	if _, ok := snap.ValidationErrors[FieldSuites]; !ok {
		t.Fatal("untouched field keeps its error")
	}
}

func TestSetPropertyTypeRejectsUnknown(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	id := svc.Create(ctx).ID

	if _, err := svc.SetPropertyType(ctx, id, "castle"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	snap, err := svc.SetPropertyType(ctx, id, "casa")
	if err != nil || snap.PropertyType != domain.PropertyHouse {
		t.Fatalf("expected house, got %q %v", snap.PropertyType, err)
	}
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, _ := newTestService(t, nil, sub)
	ctx := context.Background()
	id := svc.Create(ctx).ID

	if _, err := svc.Submit(ctx, id, ""); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("orchestrator must not be called")
	}
}

func TestSubmitAssemblesPayloadAndDiscardsWizard(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, store := newTestService(t, nil, sub)
	ctx := context.Background()
	id := svc.Create(ctx).ID
	advanceToStep3(t, svc, id)
	fillDetails(t, svc, id)
	if _, err := svc.SetFeatures(ctx, id, []string{"Piscina", "  ", "Academia"}); err != nil {
		t.Fatalf("set features: %v", err)
	}

	report, err := svc.Submit(ctx, id, "ana@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ID == "" {
		t.Fatal("expected a report")
	}

	want := domain.FormPayload{
		PropertyType:      domain.PropertyApartment,
		Area:              90,
		Bedrooms:          2,
		Suites:            1,
		Bathrooms:         2,
		ParkingSpaces:     1,
		Address:           "Av. Paulista, 1578",
		ConservationState: domain.ConservationGood,
		Features:          []string{"Piscina", "Academia"},
	}
	if diff := cmp.Diff(want, sub.payloads[0]); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if sub.emails[0] != "ana@example.com" {
		t.Fatalf("unexpected email %q", sub.emails[0])
	}
	if _, ok := store.Get(id); ok {
		t.Fatal("wizard must be discarded after success")
	}
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	sub := &fakeSubmitter{err: apperr.Upstream("Falha ao avaliar o imóvel. Por favor, tente novamente.", errors.New("boom"))}
	svc, _ := newTestService(t, nil, sub)
	ctx := context.Background()
	id := svc.Create(ctx).ID
	advanceToStep3(t, svc, id)
	fillDetails(t, svc, id)

	if _, err := svc.Submit(ctx, id, ""); !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	snap, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("wizard must survive a failed submission: %v", err)
	}
	if snap.IsSubmitting {
		t.Fatal("isSubmitting must be cleared after failure")
	}

	sub.err = nil
	if _, err := svc.Submit(ctx, id, ""); err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
}

func TestSubmitRejectsSecondSubmissionInFlight(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), started: make(chan struct{}, 1)}
	svc, _ := newTestService(t, nil, sub)
	ctx := context.Background()
	id := svc.Create(ctx).ID
	advanceToStep3(t, svc, id)
	fillDetails(t, svc, id)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, id, "")
		done <- err
	}()
	<-sub.started

	snap, _ := svc.Get(ctx, id)
	if !snap.IsSubmitting {
		t.Fatal("expected isSubmitting while in flight")
	}
	if _, err := svc.Submit(ctx, id, ""); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for second submission, got %v", err)
	}

	close(sub.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
}

func TestUnknownWizardIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	if _, err := svc.Get(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStoreExpiresIdleWizards(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	w := newWizard(now)
	store.Save(w)
	if _, ok := store.Get(w.ID()); !ok {
		t.Fatal("expected fresh wizard")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(w.ID()); ok {
		t.Fatal("expected expired wizard to be hidden")
	}
	if removed := store.Sweep(); removed != 1 || store.Len() != 0 {
		t.Fatalf("expected sweep to remove 1, removed %d, left %d", removed, store.Len())
	}
}

func TestSubmitRejectsOverlongFeatureTag(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, _ := newTestService(t, nil, sub)
	ctx := context.Background()
	id := svc.Create(ctx).ID
	advanceToStep3(t, svc, id)
	fillDetails(t, svc, id)

	if _, err := svc.SetFeatures(ctx, id, []string{"Piscina", strings.Repeat("a", 81)}); err != nil {
		t.Fatalf("set features: %v", err)
	}
	_, err := svc.Submit(ctx, id, "")
	if got := apperr.FieldErrors(err)[FieldFeatures]; got != msgFeatureTooLong {
		t.Fatalf("expected features error, got %v", err)
	}
	snap, _ := svc.Get(ctx, id)
	if snap.ValidationErrors[FieldFeatures] != msgFeatureTooLong {
		t.Fatalf("expected features error on the snapshot, got %v", snap.ValidationErrors)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("orchestrator must not be called")
	}

	snap, _ = svc.SetFeatures(ctx, id, []string{"<b>" + strings.Repeat("a", 80) + "</b>"})
	if _, ok := snap.ValidationErrors[FieldFeatures]; ok {
		t.Fatal("editing the features must clear their error")
	}
	if _, err := svc.Submit(ctx, id, ""); err != nil {
		t.Fatalf("expected an 80 character tag to pass, got %v", err)
	}
}

func TestNextRejectsMarkupOnlyAddress(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	id := svc.Create(ctx).ID

	if _, err := svc.SetFreeTextAddress(ctx, id, "<p> </p>"); err != nil {
		t.Fatalf("set address: %v", err)
	}
	snap, err := svc.Next(ctx, id)
	if apperr.FieldErrors(err)[FieldAddress] != msgAddressRequired {
		t.Fatalf("expected address error, got %v", err)
	}
	if snap.CurrentStep != StepLocation {
		t.Fatalf("expected to stay on step 1, got %d", snap.CurrentStep)
	}
}

func TestSubmitKeepsOrchestratorFieldErrors(t *testing.T) {
	sub := &fakeSubmitter{err: apperr.Validation("Dados do imóvel inválidos.", map[string]string{
		"features[0]": "Campo obrigatório.",
	})}
	svc, _ := newTestService(t, nil, sub)
	ctx := context.Background()
	id := svc.Create(ctx).ID
	advanceToStep3(t, svc, id)
	fillDetails(t, svc, id)

	if _, err := svc.Submit(ctx, id, ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	snap, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("wizard must survive a failed submit: %v", err)
	}
	if snap.ValidationErrors[FieldFeatures] != "Campo obrigatório." || snap.IsSubmitting {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
