package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"avalia_backend/internal/valuation/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/genai"
)

//go:embed result.schema.json
var resultSchemaJSON []byte

const resultSchemaURL = "valuation-result.json"

var resultSchema = mustCompileResultSchema()

func mustCompileResultSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resultSchemaURL, bytes.NewReader(resultSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add valuation schema: %v", err))
	}
	schema, err := compiler.Compile(resultSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compile valuation schema: %v", err))
	}
	return schema
}

// validateAgainstSchema checks raw model output against the result schema.
func validateAgainstSchema(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	if err := resultSchema.Validate(doc); err != nil {
		return fmt.Errorf("model output does not match schema: %w", err)
	}
	return nil
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func arrayOf(item *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: item}
}

func str(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func num(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: description}
}

func priceRangeSchema(description string) *genai.Schema {
	s := object([]string{"min", "max", "estimated"}, map[string]*genai.Schema{
		"min":       num("Valor mínimo em BRL."),
		"max":       num("Valor máximo em BRL."),
		"estimated": num("Valor estimado em BRL."),
	})
	s.Description = description
	return s
}

func sectorPointsSchema() *genai.Schema {
	return arrayOf(object([]string{"label", "propertyValue", "averageValue"}, map[string]*genai.Schema{
		"label":         str("Categoria, ex: '1', '2', '3+'."),
		"propertyValue": num("Percentual do imóvel avaliado."),
		"averageValue":  num("Percentual médio da região."),
	}))
}

// ResponseSchema is the structured-output schema sent with every request.
// It mirrors result.schema.json.
func ResponseSchema() *genai.Schema {
	return object([]string{
		"city", "generatedDate", "propertyType", "address",
		"salePrice", "rentPrice", "pricePerSqM",
		"area", "bedrooms", "bathrooms", "parkingSpaces",
		"pointsOfInterest", "securityIndex", "transactionCosts",
		"sectorStatistics", "marketTrend",
	}, map[string]*genai.Schema{
		"city":          str("Cidade extraída do endereço."),
		"generatedDate": str("Data de hoje no formato DD/MM/YYYY."),
		"propertyType":  str("Tipo do imóvel."),
		"address":       str("Endereço do imóvel."),
		"salePrice":     priceRangeSchema("Faixa de preço de venda."),
		"rentPrice":     priceRangeSchema("Faixa de preço de aluguel mensal."),
		"pricePerSqM":   num("Preço de venda por metro quadrado."),
		"area":          num("Área em m²."),
		"bedrooms":      num("Número de quartos."),
		"bathrooms":     num("Número de banheiros."),
		"parkingSpaces": num("Número de vagas."),
		"pointsOfInterest": arrayOf(object([]string{"type", "count", "description"}, map[string]*genai.Schema{
			"type":        str("Categoria, ex: Cinemas."),
			"count":       num("Quantidade nas proximidades."),
			"description": str("Descrição curta."),
		})),
		"securityIndex": object([]string{"overallScore", "metrics"}, map[string]*genai.Schema{
			"overallScore": num("Índice geral de 1 a 100."),
			"metrics": arrayOf(object([]string{"type", "score", "description"}, map[string]*genai.Schema{
				"type":        str("Tipo de ocorrência."),
				"score":       num("Pontuação de 1 a 100."),
				"description": str("Descrição curta."),
			})),
		}),
		"transactionCosts": arrayOf(object([]string{"name", "value", "description"}, map[string]*genai.Schema{
			"name":        str("Nome do custo."),
			"value":       num("Valor em BRL."),
			"description": str("Descrição curta."),
		})),
		"sectorStatistics": object([]string{"bedrooms", "bathrooms", "parking"}, map[string]*genai.Schema{
			"bedrooms":  sectorPointsSchema(),
			"bathrooms": sectorPointsSchema(),
			"parking":   sectorPointsSchema(),
		}),
		"marketTrend": object([]string{"labels", "salePrices", "rentPrices"}, map[string]*genai.Schema{
			"labels":     arrayOf(str("Mês abreviado.")),
			"salePrices": arrayOf(num("Preço de venda no mês.")),
			"rentPrices": arrayOf(num("Preço de aluguel no mês.")),
		}),
		"analysis":        str("Parágrafo de análise do imóvel."),
		"confidenceScore": num("Confiança da estimativa de 0 a 100."),
	})
}

// ParseResult validates model output and decodes it into a result.
func ParseResult(raw []byte) (domain.ValuationResult, error) {
	if err := validateAgainstSchema(raw); err != nil {
		return domain.ValuationResult{}, err
	}

	var result domain.ValuationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ValuationResult{}, fmt.Errorf("decode valuation result: %w", err)
	}
	if err := checkResult(result); err != nil {
		return domain.ValuationResult{}, err
	}
	return result, nil
}

func checkResult(r domain.ValuationResult) error {
	if r.SalePrice.Estimated <= 0 {
		return fmt.Errorf("sale estimate must be positive, got %v", r.SalePrice.Estimated)
	}
	if r.ConfidenceScore != nil && (*r.ConfidenceScore < 0 || *r.ConfidenceScore > 100) {
		return fmt.Errorf("confidence score %v out of range", *r.ConfidenceScore)
	}
	trend := r.MarketTrend
	if len(trend.Labels) != domain.TrendMonths || len(trend.SalePrices) != domain.TrendMonths || len(trend.RentPrices) != domain.TrendMonths {
		return fmt.Errorf("market trend must cover %d months", domain.TrendMonths)
	}
	return nil
}
