package config

import (
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort       string
	DatabaseURL    string // empty selects the in-memory store
	TaxRate        decimal.Decimal
	AllowedOrigins string
}

// Load reads configuration from environment variables with reasonable
// defaults. Entrypoints load .env files (godotenv) before calling this.
func Load() Config {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	taxRate := decimal.NewFromFloat(0.10)
	if raw := os.Getenv("TAX_RATE"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			log.Printf("invalid TAX_RATE value %q, defaulting to 0.10", raw)
		} else {
			taxRate = parsed
		}
	}

	return Config{
		HTTPPort:       port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		TaxRate:        taxRate,
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}
}
