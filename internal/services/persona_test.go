package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deathbydinner-backend/internal/models"
)

func TestLookupPersona(t *testing.T) {
	p, err := LookupPersona("maitre-deno")
	require.NoError(t, err)

	assert.Equal(t, "Maitre Deno", p.Name)
	assert.Equal(t, "/api/maitre-deno-chat", p.RoutePath())
	assert.Contains(t, p.Instruction, "You are Maitre Deno")
	assert.Contains(t, p.Greeting, "Bonsoir")
}

func TestLookupPersona_Unknown(t *testing.T) {
	_, err := LookupPersona("sherlock")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "maitre-deno")
}

func TestPersonaInfo_OmitsInstruction(t *testing.T) {
	p, err := LookupPersona("maitre-deno")
	require.NoError(t, err)

	data, err := json.Marshal(p.Info())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "eloquent")
	assert.Contains(t, string(data), `"name":"Maitre Deno"`)
}

func TestEventsChannel(t *testing.T) {
	assert.Equal(t, "chat_events:maitre-deno", EventsChannel("maitre-deno"))
}

func TestNoopEventPublisher(t *testing.T) {
	assert.NoError(t, NoopEventPublisher{}.Publish(context.Background(), models.RelayEvent{}))
}

func TestRedisEventPublisher_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	err := NewRedisEventPublisher(client).Publish(context.Background(), models.RelayEvent{Persona: "maitre-deno"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish relay event")
}
