package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Chat
	ChatProvider string
	ChatPersona  string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Redis (optional, enables relay events)
	RedisURL string

	// Operator feed (optional)
	OpsJWTSecret string

	// Relay event workers
	EventWorkers   int
	EventQueueSize int

	// HTTP server timeouts in seconds
	ReadTimeoutSec int
	IdleTimeoutSec int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("ENV", "development"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		ChatProvider:   strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", "openai")),
		ChatPersona:    getEnvOrDefault("CHAT_PERSONA", "maitre-deno"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getEnvOrDefault("OPENAI_BASE_URL", ""),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		OpsJWTSecret:   getEnvOrDefault("OPS_JWT_SECRET", ""),
		EventWorkers:   getEnvAsIntOrDefault("EVENT_WORKERS", 2),
		EventQueueSize: getEnvAsIntOrDefault("EVENT_QUEUE_SIZE", 100),
		ReadTimeoutSec: getEnvAsIntOrDefault("HTTP_READ_TIMEOUT_SECONDS", 15),
		IdleTimeoutSec: getEnvAsIntOrDefault("HTTP_IDLE_TIMEOUT_SECONDS", 60),
		FrontendURL:    getEnvOrDefault("FRONTEND_URL", "*"),
	}

	return cfg
}

// APIKey returns the credential of the selected chat provider and the
// environment variable it is read from.
func (c *Config) APIKey() (key, envVar string) {
	if c.ChatProvider == "gemini" {
		return c.GeminiAPIKey, "GEMINI_API_KEY"
	}
	return c.OpenAIAPIKey, "OPENAI_API_KEY"
}

// OpsFeedEnabled reports whether the operator websocket feed can be mounted.
func (c *Config) OpsFeedEnabled() bool {
	return c.RedisURL != "" && c.OpsJWTSecret != ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
