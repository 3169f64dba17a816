// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetGoogleClientID() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// GeminiConfig provides settings for the generative valuation service.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetValuationTimeout() time.Duration
}

// GeocodingConfig provides settings for the Nominatim geocoder.
type GeocodingConfig interface {
	GetNominatimBaseURL() string
	GetNominatimUserAgent() string
	GetGeocodeCacheTTL() time.Duration
}

// WizardConfig provides settings for wizard session handling.
type WizardConfig interface {
	GetWizardTTL() time.Duration
}

// ReportsConfig selects the durable report store.
type ReportsConfig interface {
	GetReportsBackend() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucketReportPDFs() string
	IsMinIOEnabled() bool
}

// GotenbergConfig provides settings for the Gotenberg HTML-to-PDF service.
type GotenbergConfig interface {
	GetGotenbergURL() string
	GetGotenbergUsername() string
	GetGotenbergPassword() string
	IsGotenbergEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	RedisURL              string
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	GoogleClientID        string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	GeminiAPIKey          string
	GeminiModel           string
	ValuationTimeout      time.Duration
	NominatimBaseURL      string
	NominatimUserAgent    string
	GeocodeCacheTTL       time.Duration
	WizardTTL             time.Duration
	ReportsBackend        string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOBucketReportPDFs string
	GotenbergURL          string
	GotenbergUsername     string
	GotenbergPassword     string
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) GetRedisURL() string    { return c.RedisURL }

func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }
func (c *Config) GetGoogleClientID() string        { return c.GoogleClientID }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetGeminiAPIKey() string            { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string             { return c.GeminiModel }
func (c *Config) GetValuationTimeout() time.Duration { return c.ValuationTimeout }

func (c *Config) GetNominatimBaseURL() string       { return c.NominatimBaseURL }
func (c *Config) GetNominatimUserAgent() string     { return c.NominatimUserAgent }
func (c *Config) GetGeocodeCacheTTL() time.Duration { return c.GeocodeCacheTTL }

func (c *Config) GetWizardTTL() time.Duration { return c.WizardTTL }

func (c *Config) GetReportsBackend() string { return c.ReportsBackend }

func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucketReportPDFs() string { return c.MinIOBucketReportPDFs }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

func (c *Config) GetGotenbergURL() string      { return c.GotenbergURL }
func (c *Config) GetGotenbergUsername() string { return c.GotenbergUsername }
func (c *Config) GetGotenbergPassword() string { return c.GotenbergPassword }
func (c *Config) IsGotenbergEnabled() bool     { return c.GotenbergURL != "" }

// Report store backends accepted by REPORTS_BACKEND.
const (
	ReportsBackendMemory   = "memory"
	ReportsBackendRedis    = "redis"
	ReportsBackendPostgres = "postgres"
)

// Load reads configuration from environment variables, after loading a
// .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates the configuration from the process environment.
func FromEnv() (*Config, error) {
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ValuationTimeout:      mustDuration(getEnv("VALUATION_TIMEOUT", "90s")),
		NominatimBaseURL:      strings.TrimRight(getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
		NominatimUserAgent:    getEnv("NOMINATIM_USER_AGENT", "QualityHomeAvalia/1.0"),
		GeocodeCacheTTL:       mustDuration(getEnv("GEOCODE_CACHE_TTL", "24h")),
		WizardTTL:             mustDuration(getEnv("WIZARD_TTL", "2h")),
		ReportsBackend:        strings.ToLower(getEnv("REPORTS_BACKEND", "")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucketReportPDFs: getEnv("MINIO_BUCKET_REPORT_PDFS", "report-pdfs"),
		GotenbergURL:          strings.TrimRight(getEnv("GOTENBERG_URL", ""), "/"),
		GotenbergUsername:     getEnv("GOTENBERG_USERNAME", ""),
		GotenbergPassword:     getEnv("GOTENBERG_PASSWORD", ""),
	}

	if cfg.ReportsBackend == "" {
		cfg.ReportsBackend = defaultReportsBackend(cfg)
	}

	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be a positive duration")
	}
	if cfg.WizardTTL <= 0 {
		return nil, fmt.Errorf("WIZARD_TTL must be a positive duration")
	}
	switch cfg.ReportsBackend {
	case ReportsBackendMemory:
	case ReportsBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when REPORTS_BACKEND is redis")
		}
	case ReportsBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when REPORTS_BACKEND is postgres")
		}
	default:
		return nil, fmt.Errorf("unknown REPORTS_BACKEND %q", cfg.ReportsBackend)
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func defaultReportsBackend(cfg *Config) string {
	switch {
	case cfg.RedisURL != "":
		return ReportsBackendRedis
	case cfg.DatabaseURL != "":
		return ReportsBackendPostgres
	default:
		return ReportsBackendMemory
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
