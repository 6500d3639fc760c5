package services

import (
	"time"

	"auction-service/internal/domain"
)

// ValidateBid decides whether a candidate bid is admissible against an auction
// snapshot. It is pure: no side effects, deterministic for a given snapshot
// and instant. The first failing rule determines the rejection reason; a nil
// result means the bid is accepted.
//
// Rules, in order:
//  1. the auction must be open (OnGoing status inside its time window)
//  2. the amount must be at least the starting price
//  3. the amount must be strictly greater than the highest accepted bid
func ValidateBid(auction *domain.Auction, bid *domain.Bid, now time.Time) *domain.Rejection {
	if !auction.IsOpen(now) {
		return &domain.Rejection{
			Reason:        domain.RejectAuctionNotOpen,
			StartingPrice: auction.StartingPrice,
		}
	}

	if bid.Amount.LessThan(auction.StartingPrice) {
		return &domain.Rejection{
			Reason:        domain.RejectBelowStartingPrice,
			StartingPrice: auction.StartingPrice,
		}
	}

	if highest, ok := auction.HighestBid(); ok {
		if !bid.Amount.GreaterThan(highest.Amount) {
			return &domain.Rejection{
				Reason:         domain.RejectNotHighestBid,
				StartingPrice:  auction.StartingPrice,
				CurrentHighest: highest.Amount,
			}
		}
	}

	return nil
}
