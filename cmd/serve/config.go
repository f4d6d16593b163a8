package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	// Server
	Port       string
	LogLevel   string // debug, info, warn, error
	CORSOrigin string
	Timeout    time.Duration

	// Provider selection; invalid values fall back to openai at request time.
	Provider string

	// API Keys
	OpenAIKey  string
	GeminiKey  string
	RunwareKey string

	// Endpoint and model overrides
	OpenAIBaseURL string
	GeminiBaseURL string
	RunwareURL    string
	OpenAIModel   string
	GeminiModel   string

	// Vertex AI; a project routes Gemini through Vertex instead of an API key.
	VertexProject  string
	VertexLocation string

	// PhotoMaker tuning
	RunwareModel    string
	RunwareStyle    string
	RunwareStrength int
	RunwareSteps    int

	// Auth; an empty secret disables authentication.
	JWTSecret string
	JWTIssuer string

	// Credits; an empty URL disables credit checks.
	RedisURL string

	// Storage; a bucket selects Cloud Storage, otherwise files go to StorageDir.
	StorageBucket string
	StorageDir    string
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := &Config{
		Port:            getEnvOrDefault("HEADSHOT_PORT", "8000"),
		LogLevel:        getEnvOrDefault("HEADSHOT_LOG_LEVEL", "info"),
		CORSOrigin:      getEnvOrDefault("HEADSHOT_CORS_ORIGIN", "*"),
		Timeout:         getEnvDurationOrDefault("HEADSHOT_TIMEOUT", 2*time.Minute),
		Provider:        os.Getenv("IMAGE_PROVIDER"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		RunwareKey:      os.Getenv("RUNWARE_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		GeminiBaseURL:   os.Getenv("GEMINI_BASE_URL"),
		RunwareURL:      os.Getenv("RUNWARE_URL"),
		OpenAIModel:     os.Getenv("OPENAI_IMAGE_MODEL"),
		GeminiModel:     os.Getenv("GEMINI_IMAGE_MODEL"),
		VertexProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		VertexLocation:  os.Getenv("GOOGLE_CLOUD_LOCATION"),
		RunwareModel:    os.Getenv("RUNWARE_MODEL"),
		RunwareStyle:    os.Getenv("RUNWARE_STYLE"),
		RunwareStrength: getEnvIntOrDefault("RUNWARE_STRENGTH", 15),
		RunwareSteps:    getEnvIntOrDefault("RUNWARE_STEPS", 20),
		JWTSecret:       os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:       os.Getenv("AUTH_JWT_ISSUER"),
		RedisURL:        os.Getenv("REDIS_URL"),
		StorageBucket:   os.Getenv("STORAGE_BUCKET"),
		StorageDir:      getEnvOrDefault("STORAGE_DIR", "./data/images"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.OpenAIKey == "" && c.GeminiKey == "" && c.VertexProject == "" && c.RunwareKey == "" {
		return fmt.Errorf("at least one of OPENAI_API_KEY, GEMINI_API_KEY, GOOGLE_CLOUD_PROJECT or RUNWARE_API_KEY is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("HEADSHOT_PORT must be a number: %q", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("HEADSHOT_TIMEOUT must be positive")
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RunwareStrength < 1 || c.RunwareStrength > 50 {
		return fmt.Errorf("RUNWARE_STRENGTH must be between 1 and 50, got %d", c.RunwareStrength)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLogLevel(c.LogLevel)
	return level
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (must be debug, info, warn, or error)", s)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
