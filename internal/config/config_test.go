package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/scoring-service/internal/events"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "REDIS_URL", "ENVIRONMENT", "SCALES_FILE",
	"SCORING_WORKERS", "CACHE_TTL", "AUTH_ENABLED", "EVENTS_ENABLED",
	"EVENTS_PUBLISHER", "KAFKA_BROKERS", "SCORING_TOPIC",
}

func clearConfigEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 0, cfg.ScoringWorkers)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.Auth.Enabled)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "scoring-events", cfg.Events.ScoringTopic)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SCORING_WORKERS", "4")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4, cfg.ScoringWorkers)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"SCORING_WORKERS": "many",
		"CACHE_TTL":       "forever",
		"AUTH_ENABLED":    "sometimes",
		"EVENTS_ENABLED":  "maybe",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestEventConfig_CreateEventPublisher(t *testing.T) {
	logger := utils.NewDiscardLogger()

	for _, cfg := range []EventConfig{
		{Enabled: false, Publisher: "kafka"},
		{Enabled: true, Publisher: "mock"},
		{Enabled: true, Publisher: "carrier-pigeon"},
	} {
		publisher, err := cfg.CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, publisher)
	}
}
