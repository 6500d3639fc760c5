package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is a monetary offer against an auction. Timestamp is assigned by the
// engine at acceptance, never trusted from the caller.
type Bid struct {
	ID        uuid.UUID       `json:"bid_id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// BidMessage is the wire shape carried on the bid queue. Field names match
// the producers' payloads, so they differ from the internal snake_case tags.
// BidID may be omitted; the engine assigns one.
type BidMessage struct {
	BidID     uuid.UUID       `json:"bidId,omitempty"`
	AuctionID uuid.UUID       `json:"auctionId"`
	UserID    uuid.UUID       `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
}

// RejectReason identifies which admission rule a bid failed.
type RejectReason string

const (
	RejectAuctionNotOpen     RejectReason = "auction_not_open"
	RejectBelowStartingPrice RejectReason = "below_starting_price"
	RejectNotHighestBid      RejectReason = "not_highest_bid"
)

// Rejection is a business outcome, not an error: it is returned as a value and
// reported to the caller with the specific reason.
type Rejection struct {
	Reason         RejectReason    `json:"reason"`
	StartingPrice  decimal.Decimal `json:"starting_price"`
	CurrentHighest decimal.Decimal `json:"current_highest"`
}
