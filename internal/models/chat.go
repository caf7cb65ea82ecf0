package models

// Role identifies the speaker of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsTurnRole reports whether r may appear in a client-supplied history.
func (r Role) IsTurnRole() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is a single message in a conversation history.
type Turn struct {
	Role    Role   `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Message is one entry of the outbound list sent to a completion backend.
// Unlike Turn it may carry the system role.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is the payload sent to the relay endpoint.
type ChatRequest struct {
	History []Turn `json:"history"`
}

// ChatResponse is the reply from the relay endpoint.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the body of every non-2xx relay response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PersonaInfo is the public part of a persona, safe to hand to widgets.
type PersonaInfo struct {
	Name     string `json:"name"`
	Subtitle string `json:"subtitle,omitempty"`
	Greeting string `json:"greeting"`
}
