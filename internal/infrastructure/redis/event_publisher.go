package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"auction-service/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventChannel = "auction_events"

// EventPublisherImpl fans bid outcomes out on a pub/sub channel. Best-effort:
// the bid engine logs publish failures and keeps going.
type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal bid event: %w", err)
	}

	return r.client.Publish(ctx, eventChannel, data).Err()
}
