package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"avalia_backend/internal/auth/service"
	"avalia_backend/internal/auth/transport"
	platformevents "avalia_backend/platform/events"
	"avalia_backend/platform/httpkit"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string       { return "session-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration { return time.Hour }
func (testConfig) GetGoogleClientID() string        { return "" }

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.New(testConfig{}, platformevents.NewInMemoryBus(logger.Discard()), logger.Discard())
	h := New(svc, validator.New())

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/auth"))
	engine.GET("/auth/me", httpkit.AuthRequired(testConfig{}), h.GetMe)
	return engine
}

func TestGoogleSignInThenMe(t *testing.T) {
	engine := newEngine()
	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ana@example.com",
		"name":  "Ana",
	}).SignedString([]byte("google"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"credential":"`+credential+`"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var session transport.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.AccessToken == "" || session.User.Email != "ana@example.com" {
		t.Fatalf("unexpected session %+v", session)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"email":"ana@example.com","name":"Ana"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestGoogleSignInRequiresCredential(t *testing.T) {
	engine := newEngine()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"credential":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
