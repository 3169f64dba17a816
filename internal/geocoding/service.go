// Package geocoding talks to Nominatim for forward search, structured city
// search and reverse lookups restricted to Brazil.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"avalia_backend/platform/config"
	"avalia_backend/platform/logger"

	"github.com/mmcloughlin/geohash"
)

// ErrNotFound is returned when Nominatim answered but had no usable result.
var ErrNotFound = errors.New("geocoding: no result")

// GeohashPrecision is the number of geohash characters kept per position (~5 m cells).
const GeohashPrecision = 9

const (
	countryCode = "br"
	countryName = "Brazil"
)

// Geocoder is the contract the wizard depends on.
type Geocoder interface {
	Search(ctx context.Context, query string) (Place, error)
	SearchCity(ctx context.Context, city, state string) (Place, error)
	Reverse(ctx context.Context, at Coordinate) (Place, error)
}

// ReverseCache stores reverse lookups by position.
type ReverseCache interface {
	Get(ctx context.Context, at Coordinate) (Place, bool)
	Set(ctx context.Context, at Coordinate, place Place)
}

// Service is the Nominatim client.
type Service struct {
	client    *http.Client
	baseURL   string
	userAgent string
	cache     ReverseCache
	log       *logger.Logger
}

func NewService(cfg config.GeocodingConfig, log *logger.Logger) *Service {
	return &Service{
		client:    &http.Client{Timeout: 5 * time.Second},
		baseURL:   strings.TrimRight(cfg.GetNominatimBaseURL(), "/"),
		userAgent: cfg.GetNominatimUserAgent(),
		log:       log,
	}
}

// WithCache enables the reverse lookup cache.
func (s *Service) WithCache(cache ReverseCache) *Service {
	s.cache = cache
	return s
}

// Search geocodes free text and returns the best match.
func (s *Service) Search(ctx context.Context, query string) (Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Place{}, ErrNotFound
	}
	places, err := s.search(ctx, url.Values{"q": {query}}, 1)
	if err != nil {
		return Place{}, err
	}
	return places[0], nil
}

// Suggest returns up to limit matches for free text.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Place, error) {
	places, err := s.search(ctx, url.Values{"q": {strings.TrimSpace(query)}}, limit)
	if errors.Is(err, ErrNotFound) {
		return []Place{}, nil
	}
	return places, err
}

// SearchCity runs a structured city/state/country query.
func (s *Service) SearchCity(ctx context.Context, city, state string) (Place, error) {
	params := url.Values{
		"city":    {city},
		"state":   {state},
		"country": {countryName},
	}
	places, err := s.search(ctx, params, 1)
	if err != nil {
		return Place{}, err
	}
	return places[0], nil
}

// Reverse resolves a position to an address.
func (s *Service) Reverse(ctx context.Context, at Coordinate) (Place, error) {
	if !at.Valid() {
		return Place{}, fmt.Errorf("nominatim reverse: invalid coordinate %v,%v", at.Lat, at.Lon)
	}
	if s.cache != nil {
		if place, ok := s.cache.Get(ctx, at); ok {
			return place, nil
		}
	}

	params := url.Values{
		"format":         {"json"},
		"lat":            {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"addressdetails": {"1"},
	}

	var raw nominatimResponse
	if err := s.get(ctx, "/reverse", params, &raw); err != nil {
		s.log.UpstreamError("nominatim", "reverse", err)
		return Place{}, err
	}
	if raw.Error != "" {
		return Place{}, ErrNotFound
	}
	place, err := toPlace(raw)
	if err != nil {
		s.log.UpstreamError("nominatim", "reverse", err)
		return Place{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, at, place)
	}
	return place, nil
}

func (s *Service) search(ctx context.Context, params url.Values, limit int) ([]Place, error) {
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("countrycodes", countryCode)

	var raw []nominatimResponse
	if err := s.get(ctx, "/search", params, &raw); err != nil {
		s.log.UpstreamError("nominatim", "search", err)
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		place, err := toPlace(r)
		if err != nil {
			s.log.UpstreamError("nominatim", "search", err)
			return nil, err
		}
		places = append(places, place)
	}
	return places, nil
}

func (s *Service) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", s.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim upstream error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode nominatim payload: %w", err)
	}
	return nil
}

// toPlace validates one raw hit. Coordinates arrive as strings.
func toPlace(raw nominatimResponse) (Place, error) {
	if strings.TrimSpace(raw.DisplayName) == "" {
		return Place{}, fmt.Errorf("nominatim result without display_name")
	}
	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("nominatim lat %q: %w", raw.Lat, err)
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("nominatim lon %q: %w", raw.Lon, err)
	}
	at := Coordinate{Lat: lat, Lon: lon}
	if !at.Valid() {
		return Place{}, fmt.Errorf("nominatim coordinate out of range: %v,%v", lat, lon)
	}

	return Place{
		DisplayName: raw.DisplayName,
		Coordinate:  at,
		Geohash:     Geohash(at),
		Address: Address{
			Road:         raw.Address.Road,
			HouseNumber:  raw.Address.HouseNumber,
			Suburb:       raw.Address.Suburb,
			Postcode:     raw.Address.Postcode,
			City:         raw.Address.City,
			Town:         raw.Address.Town,
			Village:      raw.Address.Village,
			Municipality: raw.Address.Municipality,
			State:        raw.Address.State,
			Country:      raw.Address.Country,
		},
	}, nil
}

// Geohash encodes a position at GeohashPrecision.
func Geohash(at Coordinate) string {
	return geohash.EncodeWithPrecision(at.Lat, at.Lon, GeohashPrecision)
}

var _ Geocoder = (*Service)(nil)
