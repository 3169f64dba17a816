package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/geocoding"
	"avalia_backend/internal/locations"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/internal/wizard/transport"
	"avalia_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeGeocoder struct {
	mu         sync.Mutex
	search     func(ctx context.Context, query string) (geocoding.Place, error)
	searchCity func(ctx context.Context, city, state string) (geocoding.Place, error)
	reverse    func(ctx context.Context, at geocoding.Coordinate) (geocoding.Place, error)
	cityCalls  []string
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) (geocoding.Place, error) {
	return f.search(ctx, query)
}

func (f *fakeGeocoder) SearchCity(ctx context.Context, city, state string) (geocoding.Place, error) {
	f.mu.Lock()
	f.cityCalls = append(f.cityCalls, city+"|"+state)
	f.mu.Unlock()
	return f.searchCity(ctx, city, state)
}

func (f *fakeGeocoder) Reverse(ctx context.Context, at geocoding.Coordinate) (geocoding.Place, error) {
	return f.reverse(ctx, at)
}

type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []domain.FormPayload
	emails   []string
	err      error
	release  chan struct{}
	started  chan struct{}
}

func (f *fakeSubmitter) Submit(_ context.Context, email string, payload domain.FormPayload) (domain.Report, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Report{}, f.err
	}
	f.payloads = append(f.payloads, payload)
	f.emails = append(f.emails, email)
	return domain.NewReport(payload, domain.ValuationResult{SalePrice: domain.PriceRange{Estimated: 1}}, time.Now()), nil
}

func place(display, state, city string, lat, lon float64) geocoding.Place {
	at := geocoding.Coordinate{Lat: lat, Lon: lon}
	return geocoding.Place{
		DisplayName: display,
		Coordinate:  at,
		Geohash:     geocoding.Geohash(at),
		Address:     geocoding.Address{State: state, City: city},
	}
}

func newTestService(t *testing.T, geo *fakeGeocoder, sub *fakeSubmitter) (*Service, *MemoryStore) {
	t.Helper()
	if geo == nil {
		geo = &fakeGeocoder{}
	}
	if sub == nil {
		sub = &fakeSubmitter{}
	}
	store := NewMemoryStore(time.Hour)
	bus := events.NewInMemoryBus(logger.Discard())
	return New(store, geo, locations.MustBrazil(), sub, bus, logger.Discard()), store
}

// advanceToStep3 fills steps 1 and 2 so the wizard sits on step 3.
func advanceToStep3(t *testing.T, svc *Service, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SetFreeTextAddress(ctx, id, "Av. Paulista, 1578"); err != nil {
		t.Fatalf("set address: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Next(ctx, id); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
}

func fillDetails(t *testing.T, svc *Service, id uuid.UUID) {
	t.Helper()
	d := validDetails()
	_, err := svc.SetFields(context.Background(), id, fieldsRequest(d))
	if err != nil {
		t.Fatalf("set fields: %v", err)
	}
}

func fieldsRequest(d Details) transport.FieldsRequest {
	return transport.FieldsRequest{
		Area:              &d.Area,
		Bedrooms:          &d.Bedrooms,
		Suites:            &d.Suites,
		Bathrooms:         &d.Bathrooms,
		ParkingSpaces:     &d.ParkingSpaces,
		ConservationState: &d.ConservationState,
	}
}

func fieldsRequestArea(area string) transport.FieldsRequest {
	return transport.FieldsRequest{Area: &area}
}

func nowForTest() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}
