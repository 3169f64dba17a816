package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/internal/geocoding"
	"avalia_backend/internal/locations"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/internal/wizard/service"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type noGeocoder struct{}

func (noGeocoder) Search(context.Context, string) (geocoding.Place, error) {
	return geocoding.Place{}, geocoding.ErrNotFound
}

func (noGeocoder) SearchCity(context.Context, string, string) (geocoding.Place, error) {
	return geocoding.Place{}, geocoding.ErrNotFound
}

func (noGeocoder) Reverse(context.Context, geocoding.Coordinate) (geocoding.Place, error) {
	return geocoding.Place{}, geocoding.ErrNotFound
}

type noSubmitter struct{}

func (noSubmitter) Submit(context.Context, string, domain.FormPayload) (domain.Report, error) {
	return domain.Report{}, nil
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	svc := service.New(service.NewMemoryStore(time.Hour), noGeocoder{}, locations.MustBrazil(), noSubmitter{}, events.NewInMemoryBus(log), log)
	h := New(svc, validator.New())

	engine := gin.New()
	engine.POST("/wizards", h.Create)
	engine.GET("/wizards/:id", h.Get)
	engine.POST("/wizards/:id/next", h.Next)
	engine.POST("/wizards/:id/location/locate", h.Locate)
	engine.PUT("/wizards/:id/location/marker", h.MoveMarker)
	return engine
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestNextValidationFailureReturnsSnapshot(t *testing.T) {
	engine := newTestEngine()

	rec := serve(engine, http.MethodPost, "/wizards", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created service.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = serve(engine, http.MethodPost, "/wizards/"+created.ID.String()+"/next", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
		Wizard  service.Snapshot  `json:"wizard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Details["address"] != "O endereço é obrigatório." {
		t.Fatalf("unexpected details %v", body.Details)
	}
	if body.Wizard.ID != created.ID || body.Wizard.CurrentStep != service.StepLocation {
		t.Fatalf("expected wizard snapshot at step 1, got %+v", body.Wizard)
	}
}

func TestInvalidInputs(t *testing.T) {
	engine := newTestEngine()

	if rec := serve(engine, http.MethodGet, "/wizards/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
	if rec := serve(engine, http.MethodGet, "/wizards/6f1c1f7e-3c1a-4d7b-9a43-6a4b9f0f2a11", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown wizard, got %d", rec.Code)
	}

	rec := serve(engine, http.MethodPost, "/wizards", "")
	var created service.Snapshot
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = serve(engine, http.MethodPut, "/wizards/"+created.ID.String()+"/location/marker", `{"lat": 95, "lon": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range marker, got %d", rec.Code)
	}
}
