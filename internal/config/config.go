package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	Environment string

	// Scoring
	ScalesFile     string
	ScoringWorkers int
	CacheTTL       time.Duration

	Auth   AuthConfig
	Events EventConfig
}

// AuthConfig holds the Casdoor settings used to verify bearer tokens
type AuthConfig struct {
	Enabled          bool
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	workers, err := getEnvInt("SCORING_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	authEnabled, err := getEnvBool("AUTH_ENABLED", false)
	if err != nil {
		return nil, err
	}
	eventsEnabled, err := getEnvBool("EVENTS_ENABLED", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		Environment:    getEnv("ENVIRONMENT", "development"),
		ScalesFile:     getEnv("SCALES_FILE", ""),
		ScoringWorkers: workers,
		CacheTTL:       cacheTTL,
		Auth: AuthConfig{
			Enabled:          authEnabled,
			Endpoint:         getEnv("CASDOOR_ENDPOINT", "http://localhost:8000"),
			ClientID:         getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret:     getEnv("CASDOOR_CLIENT_SECRET", ""),
			Certificate:      getEnv("CASDOOR_CERTIFICATE", ""),
			OrganizationName: getEnv("CASDOOR_ORGANIZATION", "built-in"),
			ApplicationName:  getEnv("CASDOOR_APPLICATION", "scoring-service"),
		},
		Events: EventConfig{
			Enabled:      eventsEnabled,
			Publisher:    getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			ScoringTopic: getEnv("SCORING_TOPIC", "scoring-events"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
