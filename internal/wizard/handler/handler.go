package handler

import (
	"context"
	"errors"
	"net/http"

	"avalia_backend/internal/geocoding"
	"avalia_backend/internal/wizard/service"
	"avalia_backend/internal/wizard/transport"
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/httpkit"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for wizard sessions.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid wizard id"
)

// New creates a new wizard handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create starts a wizard.
// POST /api/v1/wizards
func (h *Handler) Create(c *gin.Context) {
	httpkit.JSON(c, http.StatusCreated, h.svc.Create(c.Request.Context()))
}

// Get returns the wizard snapshot.
// GET /api/v1/wizards/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Discard drops the wizard.
// DELETE /api/v1/wizards/:id
func (h *Handler) Discard(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Discard(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAddress records typed address text.
// PUT /api/v1/wizards/:id/location/address
func (h *Handler) SetAddress(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.SetAddressRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetFreeTextAddress(c.Request.Context(), id, req.Address)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SelectState picks the state dropdown value.
// PUT /api/v1/wizards/:id/location/state
func (h *Handler) SelectState(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.SelectStateRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SelectState(c.Request.Context(), id, req.Code)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SelectCity picks the city dropdown value and geocodes it.
// PUT /api/v1/wizards/:id/location/city
func (h *Handler) SelectCity(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.SelectCityRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SelectCity(c.Request.Context(), id, req.Name)
	if h.handleError(c, id, err) {
		return
	}
	httpkit.OK(c, result)
}

// Locate geocodes the typed address.
// POST /api/v1/wizards/:id/location/locate
func (h *Handler) Locate(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	result, err := h.svc.Locate(c.Request.Context(), id)
	if h.handleError(c, id, err) {
		return
	}
	httpkit.OK(c, result)
}

// MoveMarker reverse geocodes a dropped marker.
// PUT /api/v1/wizards/:id/location/marker
func (h *Handler) MoveMarker(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.MarkerRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.OnMarkerDrag(c.Request.Context(), id, geocoding.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetPropertyType records the step-2 choice.
// PUT /api/v1/wizards/:id/property-type
func (h *Handler) SetPropertyType(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.PropertyTypeRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetPropertyType(c.Request.Context(), id, req.PropertyType)
	if h.handleError(c, id, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetFields edits step-3 fields.
// PATCH /api/v1/wizards/:id/fields
func (h *Handler) SetFields(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.FieldsRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetFields(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetFeatures replaces the feature tags.
// PUT /api/v1/wizards/:id/features
func (h *Handler) SetFeatures(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	var req transport.FeaturesRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetFeatures(c.Request.Context(), id, req.Features)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Next validates the current step and advances.
// POST /api/v1/wizards/:id/next
func (h *Handler) Next(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	result, err := h.svc.Next(c.Request.Context(), id)
	if h.handleError(c, id, err) {
		return
	}
	httpkit.OK(c, result)
}

// Back moves one step back.
// POST /api/v1/wizards/:id/back
func (h *Handler) Back(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	result, err := h.svc.Back(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Submit sends the completed wizard for valuation.
// POST /api/v1/wizards/:id/submit
func (h *Handler) Submit(c *gin.Context) {
	id, ok := h.wizardID(c)
	if !ok {
		return
	}
	identity := httpkit.GetIdentity(c)

	report, err := h.svc.Submit(c.Request.Context(), id, identity.Email())
	if h.handleError(c, id, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, report)
}

func (h *Handler) wizardID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	ctx := context.WithValue(c.Request.Context(), logger.WizardIDKey, id.String())
	c.Request = c.Request.WithContext(ctx)
	return id, true
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

// handleError answers validation failures with the field messages and the
// wizard snapshot, so the client can redraw the step in one round trip.
func (h *Handler) handleError(c *gin.Context, id uuid.UUID, err error) bool {
	if err == nil {
		return false
	}
	if !apperr.Is(err, apperr.KindValidation) {
		return httpkit.HandleError(c, err)
	}

	_ = c.Error(err)
	var appErr *apperr.Error
	_ = errors.As(err, &appErr)
	body := gin.H{"error": appErr.Message, "details": appErr.Details}
	if snap, getErr := h.svc.Get(c.Request.Context(), id); getErr == nil {
		body["wizard"] = snap
	}
	httpkit.JSON(c, http.StatusUnprocessableEntity, body)
	return true
}
