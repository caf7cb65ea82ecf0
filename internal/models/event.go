package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventRelaySucceeded = "relay_succeeded"
	EventRelayFailed    = "relay_failed"
)

// RelayEvent describes one relay call for operators. It never carries
// conversation content.
type RelayEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Persona    string    `json:"persona"`
	RequestID  string    `json:"request_id,omitempty"`
	Turns      int       `json:"turns"`
	ReplyChars int       `json:"reply_chars,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}
