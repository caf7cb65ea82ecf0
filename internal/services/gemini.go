package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"deathbydinner-backend/internal/models"
)

// GeminiBackend calls Gemini through a chat session so that earlier turns
// keep their roles.
type GeminiBackend struct {
	client    *genai.Client
	modelName string
}

func NewGeminiBackend(ctx context.Context, apiKey, modelName string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client:    client,
		modelName: modelName,
	}, nil
}

func (b *GeminiBackend) Close() {
	b.client.Close()
}

func (b *GeminiBackend) CreateCompletion(ctx context.Context, messages []models.Message) (string, error) {
	system, history, last, err := splitForGemini(messages)
	if err != nil {
		return "", err
	}

	// A model handle per call: SystemInstruction is mutable state.
	model := b.client.GenerativeModel(b.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", err
	}

	return extractText(resp), nil
}

// splitForGemini maps the outbound list onto Gemini's shape: system text,
// prior turns as session history and the final user turn to send.
func splitForGemini(messages []models.Message) (system string, history []*genai.Content, last string, err error) {
	var systemParts []string
	var turns []models.Message
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}

	if len(turns) == 0 {
		return "", nil, "", fmt.Errorf("conversation history is empty")
	}
	final := turns[len(turns)-1]
	if final.Role != models.RoleUser {
		return "", nil, "", fmt.Errorf("last turn must come from the user, got %q", final.Role)
	}

	for _, turn := range turns[:len(turns)-1] {
		role := "user"
		if turn.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	return strings.Join(systemParts, "\n\n"), history, final.Content, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
