package service

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/sanitize"
)

// Field names used as validation error keys.
const (
	FieldAddress           = "address"
	FieldState             = "state"
	FieldCity              = "city"
	FieldPropertyType      = "propertyType"
	FieldArea              = "area"
	FieldBedrooms          = "bedrooms"
	FieldSuites            = "suites"
	FieldBathrooms         = "bathrooms"
	FieldParkingSpaces     = "parkingSpaces"
	FieldConservationState = "conservationState"
	FieldFeatures          = "features"
)

const (
	msgAddressRequired      = "O endereço é obrigatório."
	msgInvalidArea          = "Área inválida."
	msgInvalidNumber        = "Número inválido."
	msgInvalidConservation  = "Estado de conservação inválido."
	msgInvalidPropertyType  = "Tipo de imóvel inválido."
	msgStateRequiredForCity = "Selecione um estado primeiro."
	msgUnknownCity          = "Cidade inválida."
	msgFeatureTooLong       = "Cada característica deve ter no máximo 80 caracteres."
)

// Details holds the step-3 inputs as typed by the user. They are only
// converted to numbers when the payload is assembled.
type Details struct {
	Area              string `json:"area"`
	Bedrooms          string `json:"bedrooms"`
	Suites            string `json:"suites"`
	Bathrooms         string `json:"bathrooms"`
	ParkingSpaces     string `json:"parkingSpaces"`
	ConservationState string `json:"conservationState"`
}

// Validate returns field → message for every invalid field. Area must be a
// number above zero; counts must be whole numbers not below zero.
func (d Details) Validate() map[string]string {
	errs := make(map[string]string)

	if area, ok := parseArea(d.Area); !ok || area <= 0 {
		errs[FieldArea] = msgInvalidArea
	}
	for field, raw := range d.counts() {
		if n, ok := parseCount(raw); !ok || n < 0 {
			errs[field] = msgInvalidNumber
		}
	}
	if _, ok := domain.ParseConservationState(d.ConservationState); !ok {
		errs[FieldConservationState] = msgInvalidConservation
	}

	return errs
}

// featuresError checks the tags as the orchestrator will see them, after
// markup is stripped. Tags that end up blank are dropped there, not rejected.
func featuresError(tags []string) (string, bool) {
	for _, tag := range tags {
		if utf8.RuneCountInString(sanitize.Text(tag)) > domain.MaxFeatureLength {
			return msgFeatureTooLong, true
		}
	}
	return "", false
}

func (d Details) counts() map[string]string {
	return map[string]string{
		FieldBedrooms:      d.Bedrooms,
		FieldSuites:        d.Suites,
		FieldBathrooms:     d.Bathrooms,
		FieldParkingSpaces: d.ParkingSpaces,
	}
}

// fill copies the parsed values into payload. Callers validate first.
func (d Details) fill(payload *domain.FormPayload) {
	payload.Area, _ = parseArea(d.Area)
	payload.Bedrooms, _ = parseCount(d.Bedrooms)
	payload.Suites, _ = parseCount(d.Suites)
	payload.Bathrooms, _ = parseCount(d.Bathrooms)
	payload.ParkingSpaces, _ = parseCount(d.ParkingSpaces)
	payload.ConservationState, _ = domain.ParseConservationState(d.ConservationState)
}

// parseArea accepts "90", "90.5" and the Brazilian "90,5".
func parseArea(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
