// Package domain holds the valuation types shared by the wizard, the
// orchestrator and the report store.
package domain

import (
	"strings"

	"avalia_backend/platform/sanitize"
)

// PropertyType is the kind of property being appraised.
type PropertyType string

const (
	PropertyApartment  PropertyType = "apartment"
	PropertyHouse      PropertyType = "house"
	PropertyCommercial PropertyType = "commercial"
)

// Valid reports whether p is one of the known property types.
func (p PropertyType) Valid() bool {
	switch p {
	case PropertyApartment, PropertyHouse, PropertyCommercial:
		return true
	}
	return false
}

// Label is the Portuguese name used in prompts and reports.
func (p PropertyType) Label() string {
	switch p {
	case PropertyApartment:
		return "Apartamento"
	case PropertyHouse:
		return "Casa"
	case PropertyCommercial:
		return "Comercial"
	}
	return string(p)
}

// ConservationState describes the property's upkeep.
type ConservationState string

const (
	ConservationGood    ConservationState = "good"
	ConservationRegular ConservationState = "regular"
	ConservationPoor    ConservationState = "poor"
)

// Valid reports whether c is one of the known conservation states.
func (c ConservationState) Valid() bool {
	switch c {
	case ConservationGood, ConservationRegular, ConservationPoor:
		return true
	}
	return false
}

// Label is the Portuguese name used in prompts and reports.
func (c ConservationState) Label() string {
	switch c {
	case ConservationGood:
		return "Bom"
	case ConservationRegular:
		return "Regular"
	case ConservationPoor:
		return "Ruim"
	}
	return string(c)
}

// ParsePropertyType accepts the wire names and the Portuguese values stored
// by older clients (apartamento, casa, local).
func ParsePropertyType(raw string) (PropertyType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "apartment", "apartamento":
		return PropertyApartment, true
	case "house", "casa":
		return PropertyHouse, true
	case "commercial", "local", "comercial":
		return PropertyCommercial, true
	}
	return "", false
}

// ParseConservationState accepts the wire names and the Portuguese values
// stored by older clients (bom, regular, ruim).
func ParseConservationState(raw string) (ConservationState, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "good", "bom":
		return ConservationGood, true
	case "regular":
		return ConservationRegular, true
	case "poor", "ruim":
		return ConservationPoor, true
	}
	return "", false
}

// FormPayload is the fully typed property description handed to the
// orchestrator. It only exists after validation.
type FormPayload struct {
	PropertyType      PropertyType      `json:"propertyType" validate:"required,oneof=apartment house commercial"`
	Area              float64           `json:"area" validate:"gt=0"`
	Bedrooms          int               `json:"bedrooms" validate:"gte=0"`
	Suites            int               `json:"suites" validate:"gte=0"`
	Bathrooms         int               `json:"bathrooms" validate:"gte=0"`
	ParkingSpaces     int               `json:"parkingSpaces" validate:"gte=0"`
	Address           string            `json:"address" validate:"required,notblank"`
	ConservationState ConservationState `json:"conservationState" validate:"required,oneof=good regular poor"`
	Features          []string          `json:"features" validate:"omitempty,dive,notblank,max=80"`
}

// MaxFeatureLength is the longest feature tag accepted, in runes.
const MaxFeatureLength = 80

// UpgradeLegacy maps legacy enum spellings onto the wire names. Free text is
// left as it was stored.
func (p FormPayload) UpgradeLegacy() FormPayload {
	if pt, ok := ParsePropertyType(string(p.PropertyType)); ok {
		p.PropertyType = pt
	}
	if cs, ok := ParseConservationState(string(p.ConservationState)); ok {
		p.ConservationState = cs
	}
	return p
}

// Normalize upgrades legacy enums, strips markup from free text and drops
// blank feature tags while keeping their order. It runs once, on input.
func (p FormPayload) Normalize() FormPayload {
	p = p.UpgradeLegacy()
	p.Address = sanitize.Text(p.Address)
	features := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		if f = sanitize.Text(f); f != "" {
			features = append(features, f)
		}
	}
	p.Features = features
	return p
}
