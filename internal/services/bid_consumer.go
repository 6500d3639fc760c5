package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"auction-service/internal/domain"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
)

// BidConsumer drains the durable bid queue and drives the bid engine. The
// channel is at-least-once, so the same logical bid may arrive more than once;
// that is safe because the engine rejects a re-applied bid on the not-highest
// rule once its own prior acceptance is in the snapshot.
type BidConsumer struct {
	queue      domain.BidQueue
	bidService *BidService
	log        logger.Logger
}

func NewBidConsumer(queue domain.BidQueue, bidService *BidService, log logger.Logger) *BidConsumer {
	return &BidConsumer{
		queue:      queue,
		bidService: bidService,
		log:        log,
	}
}

// Start blocks draining the queue until the context is cancelled.
func (c *BidConsumer) Start(ctx context.Context) error {
	c.log.Info("starting bid consumer")
	return c.queue.Consume(ctx, c.handleMessage)
}

// handleMessage resolves one delivery. Returning nil acknowledges it;
// returning an error requests redelivery. Only transient conditions
// (contention budget exhausted, storage failure) are worth redelivering:
// malformed payloads, business rejections and missing auctions are terminal
// and are acknowledged after logging.
func (c *BidConsumer) handleMessage(ctx context.Context, body []byte) error {
	var msg domain.BidMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.log.Warn("discarding malformed bid message", "error", err, "payload", string(body))
		return nil
	}
	if msg.AuctionID == uuid.Nil || msg.UserID == uuid.Nil || !msg.Amount.IsPositive() {
		c.log.Warn("discarding invalid bid message",
			"auction_id", msg.AuctionID.String(),
			"user_id", msg.UserID.String(),
			"amount", msg.Amount.String())
		return nil
	}

	candidate := domain.Bid{
		ID:     msg.BidID,
		UserID: msg.UserID,
		Amount: msg.Amount,
	}

	result, err := c.bidService.PlaceBid(ctx, msg.AuctionID, candidate)
	switch {
	case err == nil && result.Accepted():
		return nil
	case err == nil:
		c.log.Info("bid rejected",
			"auction_id", msg.AuctionID.String(),
			"user_id", msg.UserID.String(),
			"amount", msg.Amount.String(),
			"reason", string(result.Rejection.Reason))
		return nil
	case errors.Is(err, domain.ErrAuctionNotFound):
		// The auction will never reappear; redelivery is futile.
		c.log.Warn("bid for unknown auction", "auction_id", msg.AuctionID.String())
		return nil
	default:
		c.log.Error("transient bid failure, requesting redelivery",
			"auction_id", msg.AuctionID.String(), "error", err)
		return fmt.Errorf("bid consumer: %w", err)
	}
}
