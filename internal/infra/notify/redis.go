package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"slotbook/internal/pkg/config"
	"slotbook/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans booking events out on a pub/sub channel for downstream
// consumers (notification senders, cache invalidation). Delivery is best
// effort; bookings never fail on a publish error.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(cfg config.RedisConfig) (*RedisPublisher, func(), error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	publisher := &RedisPublisher{client: client, channel: cfg.Channel}
	cleanup := func() { _ = client.Close() }
	return publisher, cleanup, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event commands.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// NopPublisher is used when no redis URL is configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, commands.BookingEvent) error { return nil }
