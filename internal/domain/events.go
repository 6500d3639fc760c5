package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidEvent is published after the engine resolves a bid. Delivery is
// best-effort and never affects admission.
type BidEvent struct {
	Type      BidEventType    `json:"type"`
	AuctionID string          `json:"auction_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    RejectReason    `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type BidEventType string

const (
	BidAccepted BidEventType = "bid_accepted"
	BidRejected BidEventType = "bid_rejected"
)
