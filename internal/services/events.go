package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"deathbydinner-backend/internal/models"
)

// EventPublisher fans relay events out to operators.
type EventPublisher interface {
	Publish(ctx context.Context, event models.RelayEvent) error
}

// EventsChannel is the Redis pub/sub channel carrying a persona's events.
func EventsChannel(persona string) string {
	return "chat_events:" + persona
}

// RedisEventPublisher sends events via Redis pub/sub.
type RedisEventPublisher struct {
	redis *redis.Client
}

func NewRedisEventPublisher(redisClient *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{redis: redisClient}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event models.RelayEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode relay event: %w", err)
	}
	if err := p.redis.Publish(ctx, EventsChannel(event.Persona), string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish relay event: %w", err)
	}
	return nil
}

// NoopEventPublisher drops events; used when Redis is not configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, models.RelayEvent) error { return nil }
