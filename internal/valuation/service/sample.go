package service

import (
	"time"

	"avalia_backend/internal/valuation/domain"
)

// SampleReportID identifies the fixed sample report.
const SampleReportID = "amostra"

// Sample returns the fixed demonstration report shown before a user submits
// anything. It never touches the generative model.
func Sample() domain.Report {
	confidence := 82.0
	payload := domain.FormPayload{
		PropertyType:      domain.PropertyApartment,
		Area:              90,
		Bedrooms:          2,
		Suites:            1,
		Bathrooms:         2,
		ParkingSpaces:     1,
		Address:           "Av. Paulista, 1000, São Paulo, SP",
		ConservationState: domain.ConservationGood,
		Features:          []string{"Piscina", "Academia"},
	}

	return domain.Report{
		ID:        SampleReportID,
		Date:      "15/01/2025",
		CreatedAt: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
		FormData:  payload,
		Result: domain.ValuationResult{
			City:          "São Paulo",
			GeneratedDate: "15/01/2025",
			PropertyType:  payload.PropertyType.Label(),
			Address:       payload.Address,
			SalePrice:     domain.PriceRange{Min: 1_020_000, Max: 1_180_000, Estimated: 1_100_000},
			RentPrice:     domain.PriceRange{Min: 5_200, Max: 6_400, Estimated: 5_800},
			PricePerSqM:   12_222,
			Area:          payload.Area,
			Bedrooms:      2,
			Bathrooms:     2,
			ParkingSpaces: 1,
			PointsOfInterest: []domain.PointOfInterest{
				{Type: "Cinemas", Count: 6, Description: "Salas de cinema em até 2 km."},
				{Type: "Centros Comerciais", Count: 4, Description: "Shoppings e galerias próximos."},
				{Type: "Estações de Metrô", Count: 3, Description: "Linha Verde a poucos minutos a pé."},
			},
			SecurityIndex: domain.SecurityIndex{
				OverallScore: 68,
				Metrics: []domain.SecurityMetric{
					{Type: "Roubo de bicicleta", Score: 55, Description: "Ocorrências acima da média da cidade."},
					{Type: "Roubo residencial", Score: 78, Description: "Prédios com portaria 24h reduzem o risco."},
					{Type: "Furto de veículo", Score: 70, Description: "Incidência moderada na região."},
				},
			},
			TransactionCosts: []domain.TransactionCost{
				{Name: "ITBI", Value: 33_000, Description: "Imposto municipal de 3% sobre o valor venal."},
				{Name: "Registro de escritura", Value: 5_400, Description: "Emolumentos de cartório e registro."},
				{Name: "Certidões", Value: 650, Description: "Certidões negativas do imóvel e do vendedor."},
			},
			SectorStatistics: domain.SectorStatistics{
				Bedrooms: []domain.SectorPoint{
					{Label: "1", PropertyValue: 0, AverageValue: 25},
					{Label: "2", PropertyValue: 48, AverageValue: 45},
					{Label: "3+", PropertyValue: 0, AverageValue: 30},
				},
				Bathrooms: []domain.SectorPoint{
					{Label: "1", PropertyValue: 0, AverageValue: 40},
					{Label: "2", PropertyValue: 52, AverageValue: 42},
					{Label: "3+", PropertyValue: 0, AverageValue: 18},
				},
				Parking: []domain.SectorPoint{
					{Label: "0", PropertyValue: 0, AverageValue: 20},
					{Label: "1", PropertyValue: 60, AverageValue: 55},
					{Label: "2+", PropertyValue: 0, AverageValue: 25},
				},
			},
			MarketTrend: domain.MarketTrend{
				Labels:     []string{"Ago", "Set", "Out", "Nov", "Dez", "Jan"},
				SalePrices: []float64{1_060_000, 1_068_000, 1_075_000, 1_082_000, 1_090_000, 1_100_000},
				RentPrices: []float64{5_550, 5_600, 5_620, 5_700, 5_750, 5_800},
			},
			Analysis:        "Apartamento bem localizado no eixo da Paulista, com liquidez alta e demanda constante de locação.",
			ConfidenceScore: &confidence,
		},
	}
}
