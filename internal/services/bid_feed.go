package services

import (
	"context"

	"auction-service/internal/domain"
	"auction-service/pkg/logger"
)

// BidFeed relays resolved bid events to the live websocket feed. It sits on
// the subscriber side of the pub/sub channel so broadcasting never blocks the
// bid engine.
type BidFeed struct {
	broadcaster domain.AuctionBroadcaster
	log         logger.Logger
}

func NewBidFeed(broadcaster domain.AuctionBroadcaster, log logger.Logger) *BidFeed {
	return &BidFeed{
		broadcaster: broadcaster,
		log:         log,
	}
}

// Start blocks relaying events until the context is cancelled.
func (f *BidFeed) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	f.log.Info("starting bid feed")
	return subscriber.SubscribeToBidEvents(ctx, f.handleBidEvent)
}

func (f *BidFeed) handleBidEvent(event *domain.BidEvent) error {
	switch event.Type {
	case domain.BidAccepted:
		return f.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
			"type":        "bid_update",
			"current_bid": event.Amount,
			"bidder_id":   event.UserID,
			"timestamp":   event.Timestamp,
		})
	case domain.BidRejected:
		// Rejections are per-bidder outcomes, not feed material.
		return nil
	default:
		f.log.Warn("unknown bid event type", "type", string(event.Type))
		return nil
	}
}
