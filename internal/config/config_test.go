package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "CHAT_PROVIDER", "CHAT_PERSONA",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "REDIS_URL", "OPS_JWT_SECRET", "FRONTEND_URL",
		"EVENT_WORKERS", "EVENT_QUEUE_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.ChatProvider)
	assert.Equal(t, "maitre-deno", cfg.ChatPersona)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "*", cfg.FrontendURL)
	assert.Equal(t, 2, cfg.EventWorkers)
	assert.Equal(t, 100, cfg.EventQueueSize)
	assert.False(t, cfg.OpsFeedEnabled())

	key, envVar := cfg.APIKey()
	assert.Empty(t, key, "a missing credential must not fail Load")
	assert.Equal(t, "OPENAI_API_KEY", envVar)
}

func TestLoad_GeminiProviderKey(t *testing.T) {
	t.Setenv("CHAT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg := Load()
	assert.Equal(t, "gemini", cfg.ChatProvider)

	key, envVar := cfg.APIKey()
	assert.Equal(t, "g-key", key)
	assert.Equal(t, "GEMINI_API_KEY", envVar)
}

func TestOpsFeedEnabled(t *testing.T) {
	cfg := &Config{RedisURL: "redis://localhost:6379/0"}
	assert.False(t, cfg.OpsFeedEnabled())

	cfg.OpsJWTSecret = "secret"
	assert.True(t, cfg.OpsFeedEnabled())
}
