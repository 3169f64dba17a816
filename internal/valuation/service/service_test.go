package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/apperr"
	platformevents "avalia_backend/platform/events"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type fakeAppender struct {
	mu      sync.Mutex
	err     error
	appends map[string][]domain.Report
}

func (a *fakeAppender) Append(_ context.Context, email string, report domain.Report) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.appends == nil {
		a.appends = make(map[string][]domain.Report)
	}
	a.appends[email] = append([]domain.Report{report}, a.appends[email]...)
	return nil
}

func sampleJSON(t *testing.T, mutate func(doc map[string]any)) string {
	t.Helper()
	raw, err := json.Marshal(Sample().Result)
	if err != nil {
		t.Fatalf("marshal sample: %v", err)
	}
	if mutate == nil {
		return string(raw)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	mutate(doc)
	raw, err = json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal mutated sample: %v", err)
	}
	return string(raw)
}

func paulistaPayload() domain.FormPayload {
	return domain.FormPayload{
		PropertyType:      domain.PropertyApartment,
		Area:              90,
		Bedrooms:          2,
		Suites:            1,
		Bathrooms:         2,
		ParkingSpaces:     1,
		Address:           "Av. Paulista, 1000, São Paulo",
		ConservationState: domain.ConservationGood,
		Features:          []string{"Piscina", "Academia"},
	}
}

func newTestService(gen Generator, reports ReportAppender) (*Service, *platformevents.InMemoryBus) {
	bus := platformevents.NewInMemoryBus(logger.Discard())
	svc := New(gen, reports, validator.New(), bus, time.Second, logger.Discard())
	svc.now = func() time.Time { return time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC) }
	return svc, bus
}

func TestSubmitPaulistaScenario(t *testing.T) {
	gen := &fakeGenerator{text: sampleJSON(t, nil)}
	store := &fakeAppender{}
	svc, bus := newTestService(gen, store)

	var (
		mu        sync.Mutex
		completed []events.ValuationCompleted
	)
	bus.Subscribe(events.ValuationCompleted{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		completed = append(completed, e.(events.ValuationCompleted))
		return nil
	}))

	report, err := svc.Submit(context.Background(), "ana@example.com", paulistaPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Wait()

	if report.Result.SalePrice.Estimated <= 0 {
		t.Fatalf("expected positive estimate, got %v", report.Result.SalePrice.Estimated)
	}
	if c := report.Result.ConfidenceScore; c != nil && (*c < 0 || *c > 100) {
		t.Fatalf("confidence out of range: %v", *c)
	}
	if report.Date != "07/03/2025" || report.ID == "" {
		t.Fatalf("unexpected report header %q %q", report.ID, report.Date)
	}
	if got := store.appends["ana@example.com"]; len(got) != 1 || got[0].ID != report.ID {
		t.Fatalf("expected report to be stored, got %v", got)
	}
	if len(completed) != 1 || !completed[0].Persisted || completed[0].City != "São Paulo" {
		t.Fatalf("unexpected events %+v", completed)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"Tipo: Apartamento", "Área: 90 m²", "Estado de Conservação: Bom", "Piscina, Academia", "07/03/2025"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestSubmitAnonymousIsNotStored(t *testing.T) {
	store := &fakeAppender{}
	svc, _ := newTestService(&fakeGenerator{text: sampleJSON(t, nil)}, store)

	if _, err := svc.Submit(context.Background(), "", paulistaPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.appends) != 0 {
		t.Fatalf("anonymous report must not be stored, got %v", store.appends)
	}
}

func TestSubmitStorageFailureStillReturnsReport(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{text: sampleJSON(t, nil)}, &fakeAppender{err: errors.New("redis down")})

	report, err := svc.Submit(context.Background(), "ana@example.com", paulistaPayload())
	if err != nil {
		t.Fatalf("storage failure must not fail the valuation: %v", err)
	}
	if report.Result.SalePrice.Estimated <= 0 {
		t.Fatal("expected a usable report")
	}
}

func TestSubmitRejectsInvalidPayload(t *testing.T) {
	gen := &fakeGenerator{text: sampleJSON(t, nil)}
	svc, _ := newTestService(gen, nil)

	payload := paulistaPayload()
	payload.Area = 0
	payload.Bedrooms = -1

	_, err := svc.Submit(context.Background(), "", payload)
	fields := apperr.FieldErrors(err)
	if _, ok := fields["area"]; !ok {
		t.Fatalf("expected area error, got %v", fields)
	}
	if _, ok := fields["bedrooms"]; !ok {
		t.Fatalf("expected bedrooms error, got %v", fields)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("model must not be called for an invalid payload")
	}
}

func TestSubmitAcceptsLegacyEnumValues(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{text: sampleJSON(t, nil)}, nil)

	payload := paulistaPayload()
	payload.PropertyType = "apartamento"
	payload.ConservationState = "ruim"

	report, err := svc.Submit(context.Background(), "", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.FormData.PropertyType != domain.PropertyApartment || report.FormData.ConservationState != domain.ConservationPoor {
		t.Fatalf("expected normalized enums, got %+v", report.FormData)
	}
}

func TestSubmitCollapsesModelFailures(t *testing.T) {
	cases := map[string]*fakeGenerator{
		"transport":      {err: errors.New("deadline exceeded")},
		"not json":       {text: "Desculpe, não consigo."},
		"missing field":  {text: sampleJSON(t, func(doc map[string]any) { delete(doc, "salePrice") })},
		"wrong type":     {text: sampleJSON(t, func(doc map[string]any) { doc["area"] = "noventa" })},
		"zero estimate":  {text: sampleJSON(t, func(doc map[string]any) { doc["salePrice"].(map[string]any)["estimated"] = 0 })},
		"confidence 150": {text: sampleJSON(t, func(doc map[string]any) { doc["confidenceScore"] = 150 })},
		"short trend": {text: sampleJSON(t, func(doc map[string]any) {
			trend := doc["marketTrend"].(map[string]any)
			trend["labels"] = trend["labels"].([]any)[:5]
		})},
	}

	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(gen, nil)

			_, err := svc.Submit(context.Background(), "ana@example.com", paulistaPayload())
			if !errors.Is(err, ErrValuationFailed) {
				t.Fatalf("expected ErrValuationFailed, got %v", err)
			}
			if !apperr.Is(err, apperr.KindUpstream) {
				t.Fatalf("expected upstream kind, got %v", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Message != msgValuationFailed {
				t.Fatalf("unexpected message %v", err)
			}
		})
	}
}

func TestBuildPromptWithoutFeatures(t *testing.T) {
	payload := paulistaPayload()
	payload.Features = nil
	payload.Area = 72.5
	payload.PropertyType = domain.PropertyCommercial

	prompt, err := BuildPrompt(payload, time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Outras Características: Nenhuma informada", "Área: 72.5 m²", "Tipo: Comercial"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestParseResultRejectsLegacyShape(t *testing.T) {
	if _, err := ParseResult([]byte(`{"estimatedValue": 500000, "analysis": "x", "valuePerSqM": 5000, "confidenceScore": 80}`)); err == nil {
		t.Fatal("legacy shape must not satisfy the model output schema")
	}
}

func TestSampleSatisfiesSchema(t *testing.T) {
	if _, err := ParseResult([]byte(sampleJSON(t, nil))); err != nil {
		t.Fatalf("sample report must be a valid result: %v", err)
	}
}
