package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"avalia_backend/internal/valuation/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var reportTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"brl":     formatBRL,
	"num":     formatNumber,
	"pct":     formatPercent,
	"join":    strings.Join,
	"sectors": sectorTables,
	"trend":   trendRows,
}).ParseFS(templatesFS, "templates/report.html.tmpl"))

func printer() *message.Printer {
	return message.NewPrinter(language.BrazilianPortuguese)
}

func formatBRL(v float64) string {
	return printer().Sprintf("R$ %v", number.Decimal(v, number.Scale(2)))
}

func formatNumber(v float64) string {
	return printer().Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func formatPercent(v any) string {
	switch n := v.(type) {
	case float64:
		return formatNumber(n) + "%"
	case *float64:
		if n == nil {
			return ""
		}
		return formatNumber(*n) + "%"
	}
	return fmt.Sprint(v)
}

// sectorTables keys charts by their Portuguese title; templates range over
// maps in key order.
func sectorTables(s domain.SectorStatistics) map[string][]domain.SectorPoint {
	return map[string][]domain.SectorPoint{
		"Banheiros": s.Bathrooms,
		"Quartos":   s.Bedrooms,
		"Vagas":     s.Parking,
	}
}

type trendRow struct {
	Label string
	Sale  float64
	Rent  float64
}

func trendRows(t domain.MarketTrend) []trendRow {
	rows := make([]trendRow, 0, len(t.Labels))
	for i, label := range t.Labels {
		row := trendRow{Label: label}
		if i < len(t.SalePrices) {
			row.Sale = t.SalePrices[i]
		}
		if i < len(t.RentPrices) {
			row.Rent = t.RentPrices[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderHTML renders report as a printable HTML page.
func RenderHTML(report domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}
