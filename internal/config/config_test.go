package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "JWT_SECRET", "JWT_EXPIRY", "STORE_BACKEND", "MONGO_URI", "MONGO_DB",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_TOPIC", "FIXTURES_FILE", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, "fleet", cfg.MongoDB)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Equal(t, "fleet/alerts", cfg.MQTTTopic)
	assert.Empty(t, cfg.FixturesFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MQTT_BROKER", "tcp://localhost:1883")
	t.Setenv("FIXTURES_FILE", "/etc/fleet/fixtures.yaml")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "/etc/fleet/fixtures.yaml", cfg.FixturesFile)
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_EXPIRY", "forever")
	_, err := FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("JWT_EXPIRY", "-1h")
	_, err = FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, cfg.ConfigureLogging())
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.ConfigureLogging())
}
