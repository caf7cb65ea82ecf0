// Package widget holds the client side of the persona chat: a UI-agnostic
// controller state machine and the HTTP client that talks to the relay.
package widget

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"deathbydinner-backend/internal/models"
)

// FallbackReply is shown instead of any error text when a reply fails.
const FallbackReply = "Sorry, something went wrong on my side. Please try again in a moment."

// State is the widget's current mode as seen by a renderer.
type State string

const (
	StateClosed          State = "closed"
	StateOpenEmpty       State = "open-empty"
	StateOpenWithHistory State = "open-with-history"
	StateAwaitingReply   State = "awaiting-reply"
)

// Sender delivers the full history and returns the assistant reply.
type Sender interface {
	Send(ctx context.Context, history []models.Turn) (string, error)
}

// Controller tracks one widget session: open/closed, the transcript and the
// single in-flight submission. History lives only as long as the controller.
type Controller struct {
	mu sync.Mutex

	greeting string
	sender   Sender
	logger   zerolog.Logger

	open          bool
	awaiting      bool
	hasOpenedOnce bool
	history       []models.Turn
}

// NewController starts closed with an empty transcript. An empty greeting
// opens on an empty transcript.
func NewController(greeting string, sender Sender, logger zerolog.Logger) *Controller {
	return &Controller{
		greeting: greeting,
		sender:   sender,
		logger:   logger,
	}
}

// Toggle opens or closes the widget. The first open on an empty transcript
// adds the greeting; closing keeps the transcript.
func (c *Controller) Toggle() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = !c.open
	if c.open && !c.hasOpenedOnce && len(c.history) == 0 {
		if c.greeting != "" {
			c.history = append(c.history, models.Turn{Role: models.RoleAssistant, Content: c.greeting})
		}
		c.hasOpenedOnce = true
	}
	return c.stateLocked()
}

// Begin records a user submission. It returns the history to send and false
// when the submission is ignored: widget closed, blank input, or a reply
// already pending.
func (c *Controller) Begin(input string) ([]models.Turn, bool) {
	text := strings.TrimSpace(input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || text == "" || c.awaiting {
		return nil, false
	}

	c.history = append(c.history, models.Turn{Role: models.RoleUser, Content: text})
	c.awaiting = true
	return c.historyLocked(), true
}

// Resolve completes the pending submission with reply, or with the fallback
// turn when err is set.
func (c *Controller) Resolve(reply string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.awaiting {
		return
	}

	content := reply
	if err != nil {
		c.logger.Debug().Err(err).Msg("chat widget reply failed")
		content = FallbackReply
	}
	c.history = append(c.history, models.Turn{Role: models.RoleAssistant, Content: content})
	c.awaiting = false
}

// Submit runs a whole round trip: Begin, one Send, Resolve. It blocks until
// the reply or failure arrives and reports whether the input was accepted.
func (c *Controller) Submit(ctx context.Context, input string) bool {
	history, ok := c.Begin(input)
	if !ok {
		return false
	}

	reply, err := c.sender.Send(ctx, history)
	c.Resolve(reply, err)
	return true
}

// State derives the current State from open, awaiting and history.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// History returns a copy of the transcript, oldest turn first.
func (c *Controller) History() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyLocked()
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Controller) IsAwaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaiting
}

func (c *Controller) HasOpenedOnce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasOpenedOnce
}

func (c *Controller) stateLocked() State {
	switch {
	case !c.open:
		return StateClosed
	case c.awaiting:
		return StateAwaitingReply
	case len(c.history) == 0:
		return StateOpenEmpty
	default:
		return StateOpenWithHistory
	}
}

func (c *Controller) historyLocked() []models.Turn {
	out := make([]models.Turn, len(c.history))
	copy(out, c.history)
	return out
}
