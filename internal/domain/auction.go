package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction is the aggregate root. The repository is its sole durable owner;
// services work on transient snapshots and persist them with a version-checked
// replace.
type Auction struct {
	ID            uuid.UUID       `json:"auction_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	Image         string          `json:"image"`
	Category      Category        `json:"category"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Status        AuctionStatus   `json:"status"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	MinimumPrice  decimal.Decimal `json:"minimum_price"`
	Bids          []Bid           `json:"bids"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AuctionStatus int

const (
	AuctionDraft AuctionStatus = iota
	AuctionOnGoing
	AuctionClosed
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionDraft:
		return "draft"
	case AuctionOnGoing:
		return "ongoing"
	case AuctionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// IsOpen reports whether the auction admits bids at the given instant. The
// stored status alone is not trusted: a stale OnGoing status outside the time
// window must not admit a bid.
func (a *Auction) IsOpen(now time.Time) bool {
	if a.Status != AuctionOnGoing {
		return false
	}
	return !now.Before(a.StartTime) && now.Before(a.EndTime)
}

// HighestBid returns the maximum accepted amount so far. The bid sequence is
// ordered by acceptance, and accepted amounts are strictly increasing, so the
// last entry is the maximum; scanning keeps this safe even for documents
// written before that invariant was enforced.
func (a *Auction) HighestBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	highest := a.Bids[0]
	for _, b := range a.Bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}
	return highest, true
}

// Clone returns a deep copy so callers can mutate a snapshot without aliasing
// the source's bid slice.
func (a *Auction) Clone() *Auction {
	cp := *a
	cp.Bids = make([]Bid, len(a.Bids))
	copy(cp.Bids, a.Bids)
	return &cp
}
