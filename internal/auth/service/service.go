// Package service signs users in with a Google identity credential and
// issues the session token read by httpkit.Identity.
package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"avalia_backend/internal/events"
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/config"
	"avalia_backend/platform/httpkit"
	"avalia_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
)

const (
	msgInvalidCredential = "invalid google credential"
	msgMissingEmail      = "google credential has no email"
	msgWrongAudience     = "google credential was issued for another client"
)

// User is the signed-in person as other modules see them.
type User struct {
	Email   string
	Name    string
	Picture string
}

// Session is an issued access token and the user it belongs to.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        User
}

type Service struct {
	cfg      config.AuthServiceConfig
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{cfg: cfg, eventBus: eventBus, log: log, now: time.Now}
}

// SignInWithGoogle exchanges a Google ID token for a session. The token
// signature is not verified; only its claims are read. When a client ID is
// configured the audience must match it.
func (s *Service) SignInWithGoogle(ctx context.Context, credential string) (Session, error) {
	claims, err := parseGoogleCredential(credential)
	if err != nil {
		s.log.AuthEvent("google_sign_in", "", false, err.Error())
		return Session{}, apperr.Unauthorized(msgInvalidCredential)
	}

	user := User{
		Email:   strings.ToLower(strings.TrimSpace(stringClaim(claims, "email"))),
		Name:    strings.TrimSpace(stringClaim(claims, "name")),
		Picture: stringClaim(claims, "picture"),
	}
	if user.Email == "" {
		s.log.AuthEvent("google_sign_in", "", false, "missing email")
		return Session{}, apperr.Unauthorized(msgMissingEmail)
	}
	if user.Name == "" {
		user.Name = user.Email
	}

	if clientID := s.cfg.GetGoogleClientID(); clientID != "" {
		aud, _ := claims.GetAudience()
		if !slices.Contains(aud, clientID) {
			s.log.AuthEvent("google_sign_in", user.Email, false, "audience mismatch")
			return Session{}, apperr.Unauthorized(msgWrongAudience)
		}
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, apperr.Internal("could not issue session", err)
	}

	s.log.AuthEvent("google_sign_in", user.Email, true, "")
	s.eventBus.Publish(ctx, events.UserSignedIn{
		BaseEvent: events.NewBaseEvent(),
		Email:     user.Email,
		Name:      user.Name,
	})
	return session, nil
}

func (s *Service) issue(user User) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":     user.Email,
		"name":    user.Name,
		"picture": user.Picture,
		"type":    httpkit.TokenTypeAccess,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: signed, ExpiresAt: expiresAt, User: user}, nil
}

func parseGoogleCredential(credential string) (jwt.MapClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, errors.New("empty credential")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
