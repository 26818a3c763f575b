// Package config carries the runtime configuration for the bot process.
// Values arrive through CLI flags backed by environment variables; a local
// .env file is honored for development setups.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `validate:"required"`
	DatabaseURL   string `validate:"required"`

	OpenAIAPIKey string `validate:"required"`
	OpenAIModel  string

	MinioEndpoint  string `validate:"required"`
	MinioAccessKey string `validate:"required"`
	MinioSecretKey string `validate:"required"`
	MinioBucket    string `validate:"required"`

	CacheDir           string        `validate:"required"`
	CacheRetention     time.Duration `validate:"gt=0"`
	CacheSweepSchedule string        `validate:"required"`

	Port     int `validate:"gt=0"`
	LogLevel string
}

// LoadEnvFile loads a .env file from the working directory when present.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
