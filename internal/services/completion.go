package services

import (
	"context"
	"fmt"
	"strings"

	"deathbydinner-backend/internal/config"
	"deathbydinner-backend/internal/models"
)

// Completer is a chat-completion backend: it turns an ordered message list
// into a single reply.
type Completer interface {
	CreateCompletion(ctx context.Context, messages []models.Message) (string, error)
}

// CompletionClient produces one persona reply for a conversation history.
type CompletionClient struct {
	provider  string
	backend   Completer
	configErr error
	close     func()
}

// NewCompletionClient builds the client for cfg.ChatProvider. A missing API
// key does not fail construction; every Complete call reports it instead.
func NewCompletionClient(cfg *config.Config) (*CompletionClient, error) {
	apiKey, envVar := cfg.APIKey()

	switch cfg.ChatProvider {
	case "openai":
		if apiKey == "" {
			return missingKeyClient("OpenAI", envVar), nil
		}
		return NewCompletionClientWithBackend("OpenAI", NewOpenAIBackend(apiKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)), nil
	case "gemini":
		if apiKey == "" {
			return missingKeyClient("Gemini", envVar), nil
		}
		backend, err := NewGeminiBackend(context.Background(), apiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		c := NewCompletionClientWithBackend("Gemini", backend)
		c.close = backend.Close
		return c, nil
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("unsupported CHAT_PROVIDER %q (expected openai or gemini)", cfg.ChatProvider)}
	}
}

// NewCompletionClientWithBackend wires an arbitrary backend, e.g. a fake in
// tests. provider is the display name used in error messages.
func NewCompletionClientWithBackend(provider string, backend Completer) *CompletionClient {
	return &CompletionClient{provider: provider, backend: backend}
}

func missingKeyClient(provider, envVar string) *CompletionClient {
	return &CompletionClient{
		provider:  provider,
		configErr: &ConfigError{Message: envVar + " is not set in environment variables"},
	}
}

// Provider returns the backend display name.
func (c *CompletionClient) Provider() string {
	return c.provider
}

func (c *CompletionClient) Close() {
	if c.close != nil {
		c.close()
	}
}

// Complete sends the instruction followed by history to the backend exactly
// once and returns its reply.
func (c *CompletionClient) Complete(ctx context.Context, instruction string, history []models.Turn) (string, error) {
	if c.configErr != nil {
		return "", c.configErr
	}

	reply, err := c.backend.CreateCompletion(ctx, BuildMessages(instruction, history))
	if err != nil {
		return "", &UpstreamError{Provider: c.provider, Err: err}
	}

	if strings.TrimSpace(reply) == "" {
		return "", &UpstreamError{
			Provider: c.provider,
			Err:      fmt.Errorf("No valid response received from %s", c.provider),
		}
	}

	return reply, nil
}

// BuildMessages places the instruction as the system message ahead of the
// history, keeping history order.
func BuildMessages(instruction string, history []models.Turn) []models.Message {
	messages := make([]models.Message, 0, len(history)+1)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: instruction})
	for _, turn := range history {
		messages = append(messages, models.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}
