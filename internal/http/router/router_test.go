package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "avalia_backend/internal/http"
	"avalia_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testRouterConfig struct{}

func (testRouterConfig) GetHTTPAddr() string        { return ":0" }
func (testRouterConfig) GetCORSAllowAll() bool      { return false }
func (testRouterConfig) GetCORSOrigins() []string   { return []string{"http://localhost:5173"} }
func (testRouterConfig) GetCORSAllowCreds() bool    { return true }
func (testRouterConfig) GetJWTAccessSecret() string { return "secret" }

type failingHealth struct{}

func (failingHealth) Ping(context.Context) error { return errors.New("down") }

type recordingModule struct {
	registered bool
}

func (m *recordingModule) Name() string { return "recording" }

func (m *recordingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.registered = true
	ctx.Protected.GET("/private", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func TestRouterRegistersModulesBehindAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	module := &recordingModule{}
	engine := New(&apphttp.App{
		Config:  testRouterConfig{},
		Logger:  logger.Discard(),
		Modules: []apphttp.Module{module},
	})

	if !module.registered {
		t.Fatal("expected module routes to be registered")
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/private", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestHealthReflectsChecker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := New(&apphttp.App{Config: testRouterConfig{}, Logger: logger.Discard()})
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	down := New(&apphttp.App{Config: testRouterConfig{}, Logger: logger.Discard(), Health: failingHealth{}})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
