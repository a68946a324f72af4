package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// ChannelCustomerRegistered carries CustomerRegistered events as JSON for
// out-of-process consumers (loyalty points, welcome mail).
const ChannelCustomerRegistered = "customer.registered"

// Publisher forwards registration events to Redis pub/sub. It is plugged
// into the event dispatcher as a listener.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: ChannelCustomerRegistered}
}

func (p *Publisher) Name() string { return "redis_pubsub" }

func (p *Publisher) HandleCustomerRegistered(ctx context.Context, event domain.CustomerRegistered) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode customer registered: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
