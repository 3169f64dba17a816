package geocoding

import "strings"

// SearchRequest represents the query parameters of the address lookup endpoint.
type SearchRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies on the globe.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Address holds the address components Nominatim returns with addressdetails=1.
type Address struct {
	Road         string `json:"road,omitempty"`
	HouseNumber  string `json:"houseNumber,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Locality is the first non-empty of city, town and village.
func (a Address) Locality() string {
	for _, v := range []string{a.City, a.Town, a.Village} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Place is one geocoding hit.
type Place struct {
	DisplayName string     `json:"displayName"`
	Coordinate  Coordinate `json:"coordinate"`
	Geohash     string     `json:"geohash"`
	Address     Address    `json:"address"`
}

type nominatimAddress struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Suburb       string `json:"suburb"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// nominatimResponse mirrors the relevant parts of the OSM search and reverse payloads.
type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}
