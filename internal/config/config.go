// Package config loads service settings from the environment, after an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Config holds the service settings.
type Config struct {
	Port         string
	JWTSecret    string
	TokenExpiry  time.Duration
	StoreBackend string
	MongoURI     string
	MongoDB      string
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
	FixturesFile string
	LogLevel     string
	LogFormat    string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a validated Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		TokenExpiry:  24 * time.Hour,
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "fleet"),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "fleet-equipment"),
		MQTTTopic:    getEnv("MQTT_TOPIC", "fleet/alerts"),
		FixturesFile: os.Getenv("FIXTURES_FILE"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("config: JWT_EXPIRY %q is not a positive duration", v)
		}
		cfg.TokenExpiry = d
	}

	switch cfg.StoreBackend {
	case StoreMemory, StoreMongo:
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.JWTSecret == defaultJWTSecret {
		log.Warn("JWT_SECRET not set, using the development default")
	}
	return cfg, nil
}

// ConfigureLogging applies the log level and format.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
