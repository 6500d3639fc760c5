package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"auction-service/internal/domain"
	"auction-service/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const payloadField = "payload"

// BidStream is the durable bid queue, backed by a Redis stream with a consumer
// group. Entries are acknowledged with XACK when the handler consumes them;
// unacknowledged entries stay in the pending list and are re-delivered by the
// XAUTOCLAIM pass once they have been idle long enough. That gives
// at-least-once delivery with explicit ack/nack semantics.
type BidStream struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	minIdle  time.Duration
	block    time.Duration
	log      logger.Logger
}

func NewBidStream(client *redis.Client, stream, group, consumer string,
	minIdle time.Duration, log logger.Logger) *BidStream {
	return &BidStream{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		minIdle:  minIdle,
		block:    5 * time.Second,
		log:      log,
	}
}

// EnsureGroup creates the stream and consumer group if they do not exist.
// Idempotent across restarts and instances.
func (s *BidStream) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("redis: create consumer group %s on %s: %w", s.group, s.stream, err)
	}
	return nil
}

func (s *BidStream) PublishBid(ctx context.Context, msg *domain.BidMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis: marshal bid message: %w", err)
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{payloadField: string(data)},
	}).Err()
}

// Consume blocks draining the stream until the context is cancelled. Each
// pass first reclaims idle pending entries (redeliveries), then reads new
// ones. Handler errors leave the entry pending for a later reclaim.
func (s *BidStream) Consume(ctx context.Context, handler domain.BidHandler) error {
	if err := s.EnsureGroup(ctx); err != nil {
		return err
	}

	s.log.Info("consuming bid stream",
		"stream", s.stream, "group", s.group, "consumer", s.consumer)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("bid stream consumer stopped")
			return ctx.Err()
		default:
		}

		s.reclaimPending(ctx, handler)

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.stream, ">"},
			Count:    16,
			Block:    s.block,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error("failed to read bid stream", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				s.dispatch(ctx, msg, handler)
			}
		}
	}
}

func (s *BidStream) reclaimPending(ctx context.Context, handler domain.BidHandler) {
	messages, _, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  s.minIdle,
		Start:    "0",
		Count:    16,
	}).Result()
	if err != nil && err != redis.Nil {
		if ctx.Err() == nil {
			s.log.Error("failed to reclaim pending bids", "error", err)
		}
		return
	}

	for _, msg := range messages {
		s.log.Info("redelivering pending bid message", "message_id", msg.ID)
		s.dispatch(ctx, msg, handler)
	}
}

func (s *BidStream) dispatch(ctx context.Context, msg redis.XMessage, handler domain.BidHandler) {
	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		// Not a bid payload at all; ack so it cannot wedge the group.
		s.log.Warn("dropping stream entry without payload field", "message_id", msg.ID)
		s.ack(ctx, msg.ID)
		return
	}

	if err := handler(ctx, []byte(payload)); err != nil {
		// Negative acknowledgement: leave the entry pending so the reclaim
		// pass re-delivers it after minIdle.
		s.log.Warn("bid message left pending for redelivery",
			"message_id", msg.ID, "error", err)
		return
	}

	s.ack(ctx, msg.ID)
}

func (s *BidStream) ack(ctx context.Context, messageID string) {
	if err := s.client.XAck(ctx, s.stream, s.group, messageID).Err(); err != nil {
		s.log.Error("failed to ack bid message", "message_id", messageID, "error", err)
	}
}
