package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	SessionTTL        time.Duration
	DashboardCacheTTL time.Duration
	AIAPIKey          string
	AIBaseURL         string
	AIModel           string
	GenerationTimeout time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSROOM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Classroom API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("generation.timeout", "30s")

	sessionTTL, err := parseDuration(v.GetString("session.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	generationTimeout, err := parseDuration(v.GetString("generation.timeout"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid generation timeout: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		SessionTTL:        sessionTTL,
		DashboardCacheTTL: cacheTTL,
		AIAPIKey:          v.GetString("ai.api_key"),
		AIBaseURL:         v.GetString("ai.base_url"),
		AIModel:           v.GetString("ai.model"),
		GenerationTimeout: generationTimeout,
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}
