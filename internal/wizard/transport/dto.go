package transport

// SetAddressRequest carries free text typed into the address field.
type SetAddressRequest struct {
	Address string `json:"address"`
}

// SelectStateRequest picks a state by two-letter code; empty deselects.
type SelectStateRequest struct {
	Code string `json:"code"`
}

// SelectCityRequest picks a city of the selected state; empty deselects.
type SelectCityRequest struct {
	Name string `json:"name"`
}

// MarkerRequest is the position the map marker was dropped at.
type MarkerRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// PropertyTypeRequest sets the step-2 choice.
type PropertyTypeRequest struct {
	PropertyType string `json:"propertyType" validate:"required"`
}

// FieldsRequest edits step-3 fields. Omitted fields are left untouched.
// Values stay raw text until submission.
type FieldsRequest struct {
	Area              *string `json:"area"`
	Bedrooms          *string `json:"bedrooms"`
	Suites            *string `json:"suites"`
	Bathrooms         *string `json:"bathrooms"`
	ParkingSpaces     *string `json:"parkingSpaces"`
	ConservationState *string `json:"conservationState"`
}

// FeaturesRequest replaces the ordered feature tag list.
type FeaturesRequest struct {
	Features []string `json:"features" validate:"max=30,dive,max=80"`
}
