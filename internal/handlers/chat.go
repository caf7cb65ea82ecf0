package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deathbydinner-backend/internal/middleware"
	"deathbydinner-backend/internal/models"
	"deathbydinner-backend/internal/services"
)

const (
	msgInvalidBody    = "Invalid request body. Expected { history: [...] }"
	msgInvalidHistory = "Invalid history format. Each message must have role and content."
	msgUnknownError   = "Unknown error occurred"

	maxBodyBytes   = 1 << 20
	publishTimeout = 2 * time.Second
)

var (
	errInvalidBody    = errors.New(msgInvalidBody)
	errInvalidHistory = errors.New(msgInvalidHistory)
)

type completionClient interface {
	Complete(ctx context.Context, instruction string, history []models.Turn) (string, error)
}

// ChatHandler relays a widget's history to the completion client under a
// fixed persona.
type ChatHandler struct {
	persona    services.Persona
	completion completionClient
	events     services.EventPublisher
	logger     zerolog.Logger
}

func NewChatHandler(persona services.Persona, completion completionClient, events services.EventPublisher, logger zerolog.Logger) *ChatHandler {
	if events == nil {
		events = services.NoopEventPublisher{}
	}
	return &ChatHandler{
		persona:    persona,
		completion: completion,
		events:     events,
		logger:     logger.With().Str("persona", persona.Slug).Logger(),
	}
}

func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	history, err := decodeHistory(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(err.Error()))
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	start := time.Now()

	reply, err := h.completion.Complete(r.Context(), h.persona.Instruction, history)
	if err != nil {
		message := err.Error()
		if message == "" {
			message = msgUnknownError
		}

		h.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Int("turns", len(history)).
			Msg("Error in chat relay")
		h.publish(r.Context(), models.RelayEvent{
			Type:       models.EventRelayFailed,
			RequestID:  requestID,
			Turns:      len(history),
			Error:      message,
			DurationMS: time.Since(start).Milliseconds(),
		})

		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to process chat request: "+message))
		return
	}

	h.publish(r.Context(), models.RelayEvent{
		Type:       models.EventRelaySucceeded,
		RequestID:  requestID,
		Turns:      len(history),
		ReplyChars: len([]rune(reply)),
		DurationMS: time.Since(start).Milliseconds(),
	})

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// PersonaConfig returns what a widget needs to render its header and
// greeting. The instruction is never included.
func (h *ChatHandler) PersonaConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.persona.Info())
}

func (h *ChatHandler) publish(ctx context.Context, event models.RelayEvent) {
	event.ID = uuid.New()
	event.Persona = h.persona.Slug
	event.At = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := h.events.Publish(ctx, event); err != nil {
		h.logger.Warn().Err(err).Str("request_id", event.RequestID).Msg("relay event not published")
	}
}

// decodeHistory checks the raw payload shape before anything typed is built,
// so that nulls, wrong types and missing keys are all told apart from valid
// turns. It stops at the first invalid turn.
func decodeHistory(body io.Reader) ([]models.Turn, error) {
	var payload struct {
		History *[]json.RawMessage `json:"history"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, errInvalidBody
	}
	if payload.History == nil {
		return nil, errInvalidBody
	}

	raw := *payload.History
	history := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		turn, ok := decodeTurn(item)
		if !ok {
			return nil, errInvalidHistory
		}
		history = append(history, turn)
	}
	return history, nil
}

func decodeTurn(item json.RawMessage) (models.Turn, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return models.Turn{}, false
	}

	var role, content string
	if err := json.Unmarshal(fields["role"], &role); err != nil {
		return models.Turn{}, false
	}
	if err := json.Unmarshal(fields["content"], &content); err != nil {
		return models.Turn{}, false
	}

	if content == "" || !models.Role(role).IsTurnRole() {
		return models.Turn{}, false
	}
	return models.Turn{Role: models.Role(role), Content: content}, true
}
