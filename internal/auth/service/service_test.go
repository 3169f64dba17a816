package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/platform/apperr"
	platformevents "avalia_backend/platform/events"
	"avalia_backend/platform/httpkit"
	"avalia_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
)

type testConfig struct {
	clientID string
}

func (testConfig) GetJWTAccessSecret() string       { return "session-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration { return time.Hour }
func (c testConfig) GetGoogleClientID() string      { return c.clientID }

func googleCredential(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-google"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestSignInWithGoogleIssuesAccessToken(t *testing.T) {
	bus := platformevents.NewInMemoryBus(logger.Discard())
	var (
		mu     sync.Mutex
		signed []string
	)
	bus.Subscribe(events.UserSignedIn{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		signed = append(signed, e.(events.UserSignedIn).Email)
		return nil
	}))

	cfg := testConfig{clientID: "client-123"}
	svc := New(cfg, bus, logger.Discard())
	credential := googleCredential(t, jwt.MapClaims{
		"email":   "Ana@Example.com",
		"name":    "Ana Souza",
		"picture": "https://example.com/ana.png",
		"aud":     "client-123",
	})

	session, err := svc.SignInWithGoogle(context.Background(), credential)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Wait()

	if session.User.Email != "ana@example.com" || session.User.Name != "Ana Souza" {
		t.Fatalf("unexpected user %+v", session.User)
	}

	claims, err := httpkit.ParseAccessClaims(session.AccessToken, cfg)
	if err != nil {
		t.Fatalf("issued token must be a valid access token: %v", err)
	}
	if claims["sub"] != "ana@example.com" || claims["picture"] != "https://example.com/ana.png" {
		t.Fatalf("unexpected claims %v", claims)
	}
	if len(signed) != 1 || signed[0] != "ana@example.com" {
		t.Fatalf("expected one sign-in event, got %v", signed)
	}
}

func TestSignInWithGoogleRejects(t *testing.T) {
	cases := map[string]struct {
		clientID   string
		credential string
	}{
		"garbage":        {credential: "not-a-jwt"},
		"empty":          {credential: "  "},
		"no email":       {credential: googleCredential(t, jwt.MapClaims{"name": "Ana"})},
		"blank email":    {credential: googleCredential(t, jwt.MapClaims{"email": "  "})},
		"other audience": {clientID: "client-123", credential: googleCredential(t, jwt.MapClaims{"email": "ana@example.com", "aud": "client-999"})},
		"no audience":    {clientID: "client-123", credential: googleCredential(t, jwt.MapClaims{"email": "ana@example.com"})},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := New(testConfig{clientID: tc.clientID}, platformevents.NewInMemoryBus(logger.Discard()), logger.Discard())
			if _, err := svc.SignInWithGoogle(context.Background(), tc.credential); !apperr.Is(err, apperr.KindUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestSignInWithoutClientIDSkipsAudience(t *testing.T) {
	svc := New(testConfig{}, platformevents.NewInMemoryBus(logger.Discard()), logger.Discard())
	credential := googleCredential(t, jwt.MapClaims{"email": "ana@example.com", "aud": "anything"})

	session, err := svc.SignInWithGoogle(context.Background(), credential)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.Name != "ana@example.com" {
		t.Fatalf("expected email as fallback name, got %q", session.User.Name)
	}
}
