package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                string `env:"PORT" envDefault:"8080"`
	DBConnectionString  string `env:"DB_CONNECTION_STRING,required"`
	DBAutoMigrate       bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	ExpiryAuditSchedule string `env:"EXPIRY_AUDIT_SCHEDULE" envDefault:"@every 24h"`
}

// Load reads the .env file if present and parses the configuration from the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
