package handler

import (
	"net/http"

	"avalia_backend/internal/auth/service"
	"avalia_backend/internal/auth/transport"
	"avalia_backend/platform/httpkit"
	"avalia_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/google", h.GoogleSignIn)
}

// GoogleSignIn exchanges a Google credential for an access token.
// POST /api/v1/auth/google
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var req transport.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	session, err := h.svc.SignInWithGoogle(c.Request.Context(), req.Credential)
	if httpkit.HandleError(c, err) {
		return
	}

	user := transport.UserResponse{
		Email:   session.User.Email,
		Name:    session.User.Name,
		Picture: session.User.Picture,
	}
	httpkit.OK(c, transport.SessionResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt.Unix(),
		User:        user,
	})
}

// GetMe returns the signed-in user.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	httpkit.OK(c, transport.UserResponse{
		Email:   identity.Email(),
		Name:    identity.Name(),
		Picture: identity.Picture(),
	})
}
