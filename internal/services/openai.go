package services

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"deathbydinner-backend/internal/models"
)

// OpenAIBackend calls the OpenAI chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates the backend. baseURL overrides the API root
// (including the /v1 suffix) when set.
func NewOpenAIBackend(apiKey, model, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (b *OpenAIBackend) CreateCompletion(ctx context.Context, messages []models.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    b.model,
		Messages: toOpenAIMessages(messages),
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return out
}
