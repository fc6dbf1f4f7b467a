package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/openedu-labs/lms-service/internal/models"
)

// CasdoorConfig holds the Casdoor connection settings used to verify
// bearer sessions.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string

	// RequireSession makes a verified bearer session mandatory on the
	// API, disabling the legacy body-field and X-User-ID fallbacks.
	RequireSession bool
}

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	Casdoor CasdoorConfig

	// DemoUsers is the static legacy bridge table (email / numeric id /
	// default role) used by identifier resolution.
	DemoUsers []models.DemoUser
}

// DefaultDemoUsers returns the fixed demo account table. The numeric ids
// bridge pre-UUID demo sessions; the role is assigned when the email is
// first resolved.
func DefaultDemoUsers() []models.DemoUser {
	return []models.DemoUser{
		{LegacyID: "1", Email: "admin@gmail.com", Role: models.RoleAdmin},
		{LegacyID: "2", Email: "instructor@gmail.com", Role: models.RoleInstructor},
		{LegacyID: "3", Email: "contentcreator@gmail.com", Role: models.RoleContentCreator},
		{LegacyID: "4", Email: "student@gmail.com", Role: models.RoleStudent},
	}
}

// LoadConfig reads configuration from the environment, loading .env first
// when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "lms.notifications"),
		Casdoor: CasdoorConfig{
			Endpoint:       os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:       os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret:   os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:           os.Getenv("CASDOOR_CERT"),
			Organization:   getEnv("CASDOOR_ORGANIZATION", "openedu"),
			Application:    getEnv("CASDOOR_APPLICATION", "lms-service"),
			RequireSession: getEnv("CASDOOR_REQUIRE_SESSION", "false") == "true",
		},
		DemoUsers: DefaultDemoUsers(),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
// Error details are withheld from responses in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
