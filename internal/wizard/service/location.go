package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"avalia_backend/internal/geocoding"
	"avalia_backend/internal/locations"
	"avalia_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	msgLocationInvalid   = "Localização inválida."
	msgAddressNotFound   = "Endereço não encontrado."
	msgLocateFailed      = "Ocorreu um erro ao localizar o endereço."
	warnCityNotLocated   = "Não foi possível localizar a cidade no mapa."
	warnMarkerNotResolve = "Não foi possível obter o endereço deste ponto."
	brazilLabel          = "Brasil"
)

// LocationOutcome is the result of a location edit. Stale is true when a
// newer location edit superseded this one while the geocoder was answering;
// the result was then discarded.
type LocationOutcome struct {
	Wizard  Snapshot `json:"wizard"`
	Stale   bool     `json:"stale"`
	Warning string   `json:"warning,omitempty"`
}

// SetFreeTextAddress records typed address text and clears its error.
func (s *Service) SetFreeTextAddress(_ context.Context, id uuid.UUID, text string) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextToken()
	w.location.Address = text
	w.location.Source = SourceText
	w.clearError(FieldAddress)
	w.touch(s.now())
	return w.snapshot(), nil
}

// SelectState picks a state, reloads its cities and clears city and
// address. An empty or unknown code leaves no state selected.
func (s *Service) SelectState(_ context.Context, id uuid.UUID, code string) (Snapshot, error) {
	w, err := s.wizard(id)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextToken()
	if state, ok := s.table.Lookup(code); ok {
		w.location.StateCode = state.Code
		w.cities = s.table.CitiesOf(state.Code)
	} else {
		w.location.StateCode = ""
		w.cities = []string{}
	}
	w.location.CityName = ""
	w.location.Address = ""
	w.location.Source = SourceDropdown
	w.clearError(FieldState)
	w.clearError(FieldCity)
	w.touch(s.now())
	return w.snapshot(), nil
}

// SelectCity picks a city of the selected state and geocodes it. On success
// the marker moves there and the address becomes "City, State, Brasil"; on
// failure the address is left as it was.
func (s *Service) SelectCity(ctx context.Context, id uuid.UUID, name string) (LocationOutcome, error) {
	w, err := s.wizard(id)
	if err != nil {
		return LocationOutcome{}, err
	}

	w.mu.Lock()
	if w.location.StateCode == "" {
		w.errors[FieldCity] = msgStateRequiredForCity
		w.touch(s.now())
		w.mu.Unlock()
		return LocationOutcome{}, apperr.Validation(msgLocationInvalid, map[string]string{FieldCity: msgStateRequiredForCity})
	}
	token := w.nextToken()
	if strings.TrimSpace(name) == "" {
		w.location.CityName = ""
		w.touch(s.now())
		snap := w.snapshot()
		w.mu.Unlock()
		return LocationOutcome{Wizard: snap}, nil
	}
	city, ok := s.table.MatchCity(w.location.StateCode, name)
	if !ok {
		w.errors[FieldCity] = msgUnknownCity
		w.touch(s.now())
		w.mu.Unlock()
		return LocationOutcome{}, apperr.Validation(msgLocationInvalid, map[string]string{FieldCity: msgUnknownCity})
	}
	state, _ := s.table.Lookup(w.location.StateCode)
	w.location.CityName = city
	w.location.Source = SourceDropdown
	w.clearError(FieldCity)
	w.locating++
	w.touch(s.now())
	w.mu.Unlock()

	place, geoErr := s.geocoder.SearchCity(ctx, city, state.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.locating--
	if !w.isLatest(token) {
		return LocationOutcome{Wizard: w.snapshot(), Stale: true}, nil
	}
	if geoErr != nil {
		s.log.WithContext(ctx).Warn("city geocoding failed", "wizard_id", id, "city", city, "state", state.Code, "error", geoErr)
		return LocationOutcome{Wizard: w.snapshot(), Warning: warnCityNotLocated}, nil
	}

	w.moveMarker(place.Coordinate)
	w.location.Address = fmt.Sprintf("%s, %s, %s", city, state.Name, brazilLabel)
	w.clearError(FieldAddress)
	w.touch(s.now())
	return LocationOutcome{Wizard: w.snapshot()}, nil
}

// Locate geocodes the typed address. On success the marker moves, the
// address becomes the geocoder's canonical text and the dropdowns follow.
func (s *Service) Locate(ctx context.Context, id uuid.UUID) (LocationOutcome, error) {
	w, err := s.wizard(id)
	if err != nil {
		return LocationOutcome{}, err
	}

	w.mu.Lock()
	query := strings.TrimSpace(w.location.Address)
	if query == "" {
		w.errors[FieldAddress] = msgAddressRequired
		w.touch(s.now())
		w.mu.Unlock()
		return LocationOutcome{}, apperr.Validation(msgLocationInvalid, map[string]string{FieldAddress: msgAddressRequired})
	}
	token := w.nextToken()
	w.location.Source = SourceText
	w.locating++
	w.touch(s.now())
	w.mu.Unlock()

	place, geoErr := s.geocoder.Search(ctx, query)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.locating--
	if !w.isLatest(token) {
		return LocationOutcome{Wizard: w.snapshot(), Stale: true}, nil
	}
	if geoErr != nil {
		if errors.Is(geoErr, geocoding.ErrNotFound) {
			return LocationOutcome{}, apperr.NotFound(msgAddressNotFound)
		}
		s.log.WithContext(ctx).Warn("address geocoding failed", "wizard_id", id, "error", geoErr)
		return LocationOutcome{}, apperr.Upstream(msgLocateFailed, geoErr)
	}

	w.moveMarker(place.Coordinate)
	w.location.Address = place.DisplayName
	w.syncDropdownsFromLocation(s.table, place.Address)
	w.clearError(FieldAddress)
	w.touch(s.now())
	return LocationOutcome{Wizard: w.snapshot()}, nil
}

// OnMarkerDrag moves the marker at once, then reverse geocodes the new
// position. On failure the address is left as it was.
func (s *Service) OnMarkerDrag(ctx context.Context, id uuid.UUID, at geocoding.Coordinate) (LocationOutcome, error) {
	if !at.Valid() {
		return LocationOutcome{}, apperr.BadRequest(msgLocationInvalid)
	}
	w, err := s.wizard(id)
	if err != nil {
		return LocationOutcome{}, err
	}

	w.mu.Lock()
	token := w.nextToken()
	w.moveMarker(at)
	w.location.Source = SourceMarker
	w.locating++
	w.touch(s.now())
	w.mu.Unlock()

	place, geoErr := s.geocoder.Reverse(ctx, at)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.locating--
	if !w.isLatest(token) {
		return LocationOutcome{Wizard: w.snapshot(), Stale: true}, nil
	}
	if geoErr != nil {
		s.log.WithContext(ctx).Warn("reverse geocoding failed", "wizard_id", id, "error", geoErr)
		return LocationOutcome{Wizard: w.snapshot(), Warning: warnMarkerNotResolve}, nil
	}

	w.location.Address = place.DisplayName
	w.syncDropdownsFromLocation(s.table, place.Address)
	w.clearError(FieldAddress)
	w.touch(s.now())
	return LocationOutcome{Wizard: w.snapshot()}, nil
}

// syncDropdownsFromLocation points the dropdowns at the geocoded state and
// city when both exist in the reference table. A state that is not in the
// table empties both dropdowns; a city that is not in the state's list
// leaves the city unselected. It never fails. Callers hold w.mu.
func (w *Wizard) syncDropdownsFromLocation(table *locations.Table, addr geocoding.Address) {
	state, ok := table.StateByName(addr.State)
	if !ok {
		w.location.StateCode = ""
		w.location.CityName = ""
		w.cities = []string{}
		return
	}

	w.location.StateCode = state.Code
	w.cities = table.CitiesOf(state.Code)
	if city, found := table.MatchCity(state.Code, addr.Locality()); found {
		w.location.CityName = city
	} else {
		w.location.CityName = ""
	}
}

func (w *Wizard) moveMarker(at geocoding.Coordinate) {
	w.location.Marker = at
	w.location.Geohash = geocoding.Geohash(at)
}
