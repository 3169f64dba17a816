package service

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"avalia_backend/internal/valuation/domain"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("valuation").Parse(promptSource))

const noFeatures = "Nenhuma informada"

type promptData struct {
	PropertyType      string
	Area              string
	Bedrooms          int
	Suites            int
	Bathrooms         int
	ParkingSpaces     int
	ConservationState string
	Address           string
	Features          string
	Today             string
}

// BuildPrompt renders the Portuguese valuation prompt for payload.
func BuildPrompt(payload domain.FormPayload, today time.Time) (string, error) {
	features := noFeatures
	if len(payload.Features) > 0 {
		features = strings.Join(payload.Features, ", ")
	}

	data := promptData{
		PropertyType:      payload.PropertyType.Label(),
		Area:              strconv.FormatFloat(payload.Area, 'f', -1, 64),
		Bedrooms:          payload.Bedrooms,
		Suites:            payload.Suites,
		Bathrooms:         payload.Bathrooms,
		ParkingSpaces:     payload.ParkingSpaces,
		ConservationState: payload.ConservationState.Label(),
		Address:           payload.Address,
		Features:          features,
		Today:             today.Format(domain.DateLayout),
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render valuation prompt: %w", err)
	}
	return buf.String(), nil
}
