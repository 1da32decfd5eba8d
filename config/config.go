package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Warn().Msg("no .env file found, relying on process environment")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetBool retrieves a boolean feature flag; unset or unparsable values fall
// back to the given default.
func GetBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// StockDecrementEnabled reports whether placing an order consumes size stock.
// Off by default: stock tracking is informational unless opted in.
func StockDecrementEnabled() bool {
	return GetBool("STOCK_DECREMENT", false)
}
