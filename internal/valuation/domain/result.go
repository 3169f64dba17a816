package domain

import "encoding/json"

// PriceRange is a min/max/most-likely triple in BRL.
type PriceRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Estimated float64 `json:"estimated"`
}

type PointOfInterest struct {
	Type        string  `json:"type"`
	Count       float64 `json:"count"`
	Description string  `json:"description"`
}

type SecurityMetric struct {
	Type        string  `json:"type"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type SecurityIndex struct {
	OverallScore float64          `json:"overallScore"`
	Metrics      []SecurityMetric `json:"metrics"`
}

type TransactionCost struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// SectorPoint is one bar of a sector comparison chart.
type SectorPoint struct {
	Label         string  `json:"label"`
	PropertyValue float64 `json:"propertyValue"`
	AverageValue  float64 `json:"averageValue"`
}

type SectorStatistics struct {
	Bedrooms  []SectorPoint `json:"bedrooms"`
	Bathrooms []SectorPoint `json:"bathrooms"`
	Parking   []SectorPoint `json:"parking"`
}

// MarketTrend holds six monthly points for the trend chart.
type MarketTrend struct {
	Labels     []string  `json:"labels"`
	SalePrices []float64 `json:"salePrices"`
	RentPrices []float64 `json:"rentPrices"`
}

// TrendMonths is the length of every MarketTrend series.
const TrendMonths = 6

// ValuationResult is the report the generative model fills in.
type ValuationResult struct {
	City             string            `json:"city"`
	GeneratedDate    string            `json:"generatedDate"`
	PropertyType     string            `json:"propertyType"`
	Address          string            `json:"address"`
	SalePrice        PriceRange        `json:"salePrice"`
	RentPrice        PriceRange        `json:"rentPrice"`
	PricePerSqM      float64           `json:"pricePerSqM"`
	Area             float64           `json:"area"`
	Bedrooms         float64           `json:"bedrooms"`
	Bathrooms        float64           `json:"bathrooms"`
	ParkingSpaces    float64           `json:"parkingSpaces"`
	PointsOfInterest []PointOfInterest `json:"pointsOfInterest"`
	SecurityIndex    SecurityIndex     `json:"securityIndex"`
	TransactionCosts []TransactionCost `json:"transactionCosts"`
	SectorStatistics SectorStatistics  `json:"sectorStatistics"`
	MarketTrend      MarketTrend       `json:"marketTrend"`
	Analysis         string            `json:"analysis,omitempty"`
	ConfidenceScore  *float64          `json:"confidenceScore,omitempty"`
}

type resultAlias ValuationResult

// legacyResult is the four-field shape older reports were stored in.
type legacyResult struct {
	EstimatedValue *float64 `json:"estimatedValue"`
	ValuePerSqM    *float64 `json:"valuePerSqM"`
}

// UnmarshalJSON reads both the current shape and the legacy
// {estimatedValue, analysis, valuePerSqM, confidenceScore} shape.
func (r *ValuationResult) UnmarshalJSON(data []byte) error {
	var cur resultAlias
	if err := json.Unmarshal(data, &cur); err != nil {
		return err
	}
	var legacy legacyResult
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	if cur.SalePrice.Estimated == 0 && legacy.EstimatedValue != nil {
		cur.SalePrice = PriceRange{
			Min:       *legacy.EstimatedValue,
			Max:       *legacy.EstimatedValue,
			Estimated: *legacy.EstimatedValue,
		}
	}
	if cur.PricePerSqM == 0 && legacy.ValuePerSqM != nil {
		cur.PricePerSqM = *legacy.ValuePerSqM
	}

	*r = ValuationResult(cur)
	return nil
}
