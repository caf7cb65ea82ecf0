package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deathbydinner-backend/internal/models"
)

func TestRedisEventPublisher_PublishesOnPersonaChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, EventsChannel("maitre-deno"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "subscription confirmed")

	event := models.RelayEvent{
		Type:      models.EventRelaySucceeded,
		Persona:   "maitre-deno",
		RequestID: "req-1",
		Turns:     2,
	}
	require.NoError(t, NewRedisEventPublisher(client).Publish(ctx, event))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "chat_events:maitre-deno", msg.Channel)
		var got models.RelayEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "req-1", got.RequestID)
		assert.Equal(t, models.EventRelaySucceeded, got.Type)
		assert.Equal(t, 2, got.Turns)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
