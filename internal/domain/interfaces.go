package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuctionFilter narrows FindAll. Nil fields match everything. CategoryAll is
// treated as no category filter.
type AuctionFilter struct {
	Category *Category
	Status   *AuctionStatus
}

// AuctionRepository is a keyed document store for auction aggregates.
// Replace is conditional on the version read with the snapshot and returns
// ErrVersionConflict when another writer committed first; that conditional
// write is the only concurrency primitive the store offers.
type AuctionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	FindAll(ctx context.Context, filter AuctionFilter) ([]*Auction, error)
	Insert(ctx context.Context, auction *Auction) error
	Replace(ctx context.Context, id uuid.UUID, auction *Auction, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BidHandler processes one raw queue message. A nil return acknowledges the
// delivery; a non-nil return requests redelivery.
type BidHandler func(ctx context.Context, body []byte) error

// BidQueue is the durable, at-least-once channel carrying bid submissions.
type BidQueue interface {
	PublishBid(ctx context.Context, msg *BidMessage) error
	Consume(ctx context.Context, handler BidHandler) error
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

type EventSubscriber interface {
	SubscribeToBidEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *BidEvent) error

// Notification interfaces
type AuctionBroadcaster interface {
	BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Clock lets tests pin the admission window check.
type Clock func() time.Time
