package service

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"avalia_backend/internal/geocoding"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Step is the wizard position, 1 through 3.
type Step int

const (
	StepLocation        Step = 1
	StepPropertyType    Step = 2
	StepCharacteristics Step = 3
)

// LocationSource records which input last decided the location.
type LocationSource string

const (
	SourceNone     LocationSource = ""
	SourceDropdown LocationSource = "dropdown"
	SourceText     LocationSource = "text"
	SourceMarker   LocationSource = "marker"
)

// initialMarker is where the map opens before the user picks anything.
var initialMarker = geocoding.Coordinate{Lat: -12.5797, Lon: -41.7007}

// Location is the step-1 selection.
type Location struct {
	StateCode string               `json:"stateCode"`
	CityName  string               `json:"cityName"`
	Address   string               `json:"address"`
	Marker    geocoding.Coordinate `json:"marker"`
	Geohash   string               `json:"geohash"`
	Source    LocationSource       `json:"source"`
}

// Snapshot is a consistent copy of a wizard's state.
type Snapshot struct {
	ID               uuid.UUID           `json:"id"`
	CurrentStep      Step                `json:"currentStep"`
	PropertyType     domain.PropertyType `json:"propertyType"`
	Details          Details             `json:"details"`
	Features         []string            `json:"features"`
	Location         Location            `json:"location"`
	Cities           []string            `json:"cities"`
	ValidationErrors map[string]string   `json:"validationErrors"`
	IsSubmitting     bool                `json:"isSubmitting"`
	IsLocating       bool                `json:"isLocating"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Wizard is one user's form session. All fields are guarded by mu except
// lastSeen, which the store reads for expiry without taking the lock.
type Wizard struct {
	mu sync.Mutex

	id           uuid.UUID
	step         Step
	propertyType domain.PropertyType
	details      Details
	features     []string
	location     Location
	cities       []string
	errors       map[string]string
	submitting   bool
	locating     int
	token        uint64
	createdAt    time.Time
	updatedAt    time.Time

	lastSeen atomic.Int64
}

func newWizard(now time.Time) *Wizard {
	w := &Wizard{
		id:           uuid.New(),
		step:         StepLocation,
		propertyType: domain.PropertyApartment,
		details:      Details{ConservationState: string(domain.ConservationGood)},
		features:     []string{},
		location: Location{
			Marker:  initialMarker,
			Geohash: geocoding.Geohash(initialMarker),
		},
		cities:    []string{},
		errors:    map[string]string{},
		createdAt: now,
	}
	w.touch(now)
	return w
}

// ID returns the wizard's identifier.
func (w *Wizard) ID() uuid.UUID { return w.id }

// LastSeen is the time of the last mutation.
func (w *Wizard) LastSeen() time.Time { return time.Unix(0, w.lastSeen.Load()) }

func (w *Wizard) touch(now time.Time) {
	w.updatedAt = now
	w.lastSeen.Store(now.UnixNano())
}

// nextToken invalidates every geocoding call still in flight.
func (w *Wizard) nextToken() uint64 {
	w.token++
	return w.token
}

func (w *Wizard) isLatest(token uint64) bool { return w.token == token }

func (w *Wizard) snapshot() Snapshot {
	errs := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	return Snapshot{
		ID:               w.id,
		CurrentStep:      w.step,
		PropertyType:     w.propertyType,
		Details:          w.details,
		Features:         append([]string{}, w.features...),
		Location:         w.location,
		Cities:           append([]string{}, w.cities...),
		ValidationErrors: errs,
		IsSubmitting:     w.submitting,
		IsLocating:       w.locating > 0,
		CreatedAt:        w.createdAt,
		UpdatedAt:        w.updatedAt,
	}
}

func (w *Wizard) clearError(field string) {
	delete(w.errors, field)
}

// validateStep runs the validator owned by step.
func (w *Wizard) validateStep(step Step) map[string]string {
	switch step {
	case StepLocation:
		if sanitize.Text(w.location.Address) == "" {
			return map[string]string{FieldAddress: msgAddressRequired}
		}
	case StepPropertyType:
		if !w.propertyType.Valid() {
			return map[string]string{FieldPropertyType: msgInvalidPropertyType}
		}
	case StepCharacteristics:
		errs := w.details.Validate()
		if msg, bad := featuresError(w.features); bad {
			errs[FieldFeatures] = msg
		}
		return errs
	}
	return map[string]string{}
}

// next validates the current step and advances, capped at the last step.
// The returned map is empty on success.
func (w *Wizard) next() map[string]string {
	errs := w.validateStep(w.step)
	w.errors = errs
	if len(errs) > 0 {
		return errs
	}
	if w.step < StepCharacteristics {
		w.step++
	}
	return errs
}

// back moves one step back without validating, floored at the first step.
func (w *Wizard) back() {
	if w.step > StepLocation {
		w.step--
	}
}

// payload assembles the typed payload. Callers validate step 3 first.
func (w *Wizard) payload() domain.FormPayload {
	p := domain.FormPayload{
		PropertyType: w.propertyType,
		Address:      strings.TrimSpace(w.location.Address),
		Features:     append([]string{}, w.features...),
	}
	w.details.fill(&p)
	return p
}
