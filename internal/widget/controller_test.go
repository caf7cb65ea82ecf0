package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deathbydinner-backend/internal/models"
)

const greeting = "Bonsoir, honored guest. I am Maitre Deno. May I tell you how Death by Dinner works?"

type stubSender struct {
	reply   string
	err     error
	sent    [][]models.Turn
	release chan struct{}
}

func (s *stubSender) Send(ctx context.Context, history []models.Turn) (string, error) {
	s.sent = append(s.sent, history)
	if s.release != nil {
		<-s.release
	}
	return s.reply, s.err
}

func TestController_InitialState(t *testing.T) {
	c := NewController(greeting, &stubSender{}, zerolog.Nop())

	assert.Equal(t, StateClosed, c.State())
	assert.Empty(t, c.History())
	assert.False(t, c.IsAwaiting())
	assert.False(t, c.HasOpenedOnce())
}

func TestController_FirstOpenAddsGreetingOnce(t *testing.T) {
	c := NewController(greeting, &stubSender{}, zerolog.Nop())

	assert.Equal(t, StateOpenWithHistory, c.Toggle())
	require.Len(t, c.History(), 1)
	assert.Equal(t, models.Turn{Role: models.RoleAssistant, Content: greeting}, c.History()[0])
	assert.True(t, c.HasOpenedOnce())

	assert.Equal(t, StateClosed, c.Toggle())
	assert.Len(t, c.History(), 1, "closing keeps history")

	c.Toggle()
	assert.Len(t, c.History(), 1, "re-opening does not add a second greeting")
}

func TestController_NoGreetingConfigured(t *testing.T) {
	c := NewController("", &stubSender{}, zerolog.Nop())

	assert.Equal(t, StateOpenEmpty, c.Toggle())
	assert.True(t, c.HasOpenedOnce())
	assert.Empty(t, c.History())
}

func TestController_BlankInputIsNoop(t *testing.T) {
	sender := &stubSender{reply: "unused"}
	c := NewController(greeting, sender, zerolog.Nop())
	c.Toggle()

	for _, input := range []string{"", "   ", "\n\t "} {
		assert.False(t, c.Submit(context.Background(), input))
	}
	assert.Len(t, c.History(), 1)
	assert.Empty(t, sender.sent)
}

func TestController_SubmitWhileClosedIsNoop(t *testing.T) {
	sender := &stubSender{reply: "unused"}
	c := NewController(greeting, sender, zerolog.Nop())

	assert.False(t, c.Submit(context.Background(), "hello"))
	assert.Empty(t, c.History())
	assert.Empty(t, sender.sent)
}

func TestController_SubmitSuccess(t *testing.T) {
	sender := &stubSender{reply: "A murder most delicious, dear guest."}
	c := NewController("", sender, zerolog.Nop())
	c.Toggle()

	require.True(t, c.Submit(context.Background(), "  How does this work?  "))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []models.Turn{{Role: models.RoleUser, Content: "How does this work?"}}, sender.sent[0])
	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Content: "How does this work?"},
		{Role: models.RoleAssistant, Content: "A murder most delicious, dear guest."},
	}, c.History())
	assert.Equal(t, StateOpenWithHistory, c.State())
	assert.False(t, c.IsAwaiting())
}

func TestController_SubmitFailureUsesFallback(t *testing.T) {
	sender := &stubSender{err: errors.New("request failed: status=500")}
	c := NewController("", sender, zerolog.Nop())
	c.Toggle()

	require.True(t, c.Submit(context.Background(), "How does this work?"))

	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Content: "How does this work?"},
		{Role: models.RoleAssistant, Content: FallbackReply},
	}, c.History())
	assert.NotContains(t, c.History()[1].Content, "500")
}

func TestController_OptimisticUserTurnAndBusyGuard(t *testing.T) {
	sender := &stubSender{reply: "Indeed.", release: make(chan struct{})}
	c := NewController(greeting, sender, zerolog.Nop())
	c.Toggle()

	done := make(chan bool)
	go func() { done <- c.Submit(context.Background(), "How does this work?") }()

	require.Eventually(t, c.IsAwaiting, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateAwaitingReply, c.State())

	history := c.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "How does this work?"}, history[1])

	assert.False(t, c.Submit(context.Background(), "Hello?"), "submission while awaiting is ignored")
	assert.Len(t, c.History(), 2)

	close(sender.release)
	assert.True(t, <-done)

	history = c.History()
	require.Len(t, history, 3)
	assert.Equal(t, models.Turn{Role: models.RoleAssistant, Content: "Indeed."}, history[2])
	assert.Len(t, sender.sent, 1)
}

func TestController_BeginResolve(t *testing.T) {
	c := NewController(greeting, nil, zerolog.Nop())
	c.Toggle()

	sent, ok := c.Begin("How does this work?")
	require.True(t, ok)
	assert.Len(t, sent, 2, "greeting plus the new user turn")

	_, ok = c.Begin("again")
	assert.False(t, ok)

	// Closing while awaiting keeps the pending reply.
	c.Toggle()
	c.Resolve("Here is how.", nil)
	assert.Equal(t, StateClosed, c.State())
	assert.Len(t, c.History(), 3)

	// A stray resolve without a pending submission changes nothing.
	c.Resolve("late", nil)
	assert.Len(t, c.History(), 3)
}
