package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-service/internal/domain"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
)

// DefaultMaxPlaceBidRetries bounds the optimistic-replace loop. Exceeding it
// surfaces domain.ErrConflictExhausted instead of looping forever on a hot
// auction.
const DefaultMaxPlaceBidRetries = 5

// BidResult is the tagged outcome of a bid application. Exactly one of Bid or
// Rejection is set when the accompanying error is nil.
type BidResult struct {
	Bid       *domain.Bid
	Rejection *domain.Rejection
}

func (r BidResult) Accepted() bool {
	return r.Bid != nil
}

// BidService is the bid application engine. It is shared by the synchronous
// HTTP path and the queue consumer, and holds no state across calls; the
// version-checked replace on the repository is the only thing that keeps two
// concurrent "currently highest" checks from both committing.
type BidService struct {
	repo       domain.AuctionRepository
	eventPub   domain.EventPublisher
	maxRetries int
	now        domain.Clock
	log        logger.Logger
}

func NewBidService(repo domain.AuctionRepository, eventPub domain.EventPublisher, maxRetries int, log logger.Logger) *BidService {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxPlaceBidRetries
	}
	return &BidService{
		repo:       repo,
		eventPub:   eventPub,
		maxRetries: maxRetries,
		now:        time.Now,
		log:        log,
	}
}

// SetClock overrides the engine clock. Tests only.
func (s *BidService) SetClock(clock domain.Clock) {
	s.now = clock
}

// PlaceBid loads the auction, validates the candidate against the snapshot and
// appends it with a conditional replace. A lost race reloads and revalidates,
// up to the retry bound.
//
// Outcomes: accepted or rejected results come back in BidResult with a nil
// error; domain.ErrAuctionNotFound, domain.ErrConflictExhausted and storage
// failures come back as errors. Rejections never persist anything.
func (s *BidService) PlaceBid(ctx context.Context, auctionID uuid.UUID, candidate domain.Bid) (BidResult, error) {
	auction, err := s.repo.GetByID(ctx, auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("bid service: load auction %s: %w", auctionID, err)
	}

	bid := candidate
	bid.AuctionID = auctionID
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if rejection := ValidateBid(auction, &bid, s.now()); rejection != nil {
			s.publishEvent(ctx, domain.BidRejected, &bid, rejection.Reason)
			return BidResult{Rejection: rejection}, nil
		}

		// The timestamp reflects acceptance, not submission.
		bid.Timestamp = s.now().UTC()

		snapshot := auction.Clone()
		snapshot.Bids = append(snapshot.Bids, bid)
		snapshot.UpdatedAt = bid.Timestamp

		err = s.repo.Replace(ctx, auctionID, snapshot, auction.Version)
		if err == nil {
			s.log.Info("bid accepted",
				"auction_id", auctionID.String(),
				"bid_id", bid.ID.String(),
				"user_id", bid.UserID.String(),
				"amount", bid.Amount.String())
			s.publishEvent(ctx, domain.BidAccepted, &bid, "")
			return BidResult{Bid: &bid}, nil
		}
		if !isConflict(err) {
			return BidResult{}, fmt.Errorf("bid service: replace auction %s: %w", auctionID, err)
		}

		// Lost the race: another writer committed first. Reload and run the
		// admission check against the fresh snapshot.
		auction, err = s.repo.GetByID(ctx, auctionID)
		if err != nil {
			return BidResult{}, fmt.Errorf("bid service: reload auction %s: %w", auctionID, err)
		}
		s.log.Debug("bid replace conflict, retrying",
			"auction_id", auctionID.String(),
			"bid_id", bid.ID.String(),
			"attempt", attempt+1)
	}

	return BidResult{}, fmt.Errorf("bid service: auction %s: %w", auctionID, domain.ErrConflictExhausted)
}

func (s *BidService) publishEvent(ctx context.Context, eventType domain.BidEventType, bid *domain.Bid, reason domain.RejectReason) {
	if s.eventPub == nil {
		return
	}
	event := &domain.BidEvent{
		Type:      eventType,
		AuctionID: bid.AuctionID.String(),
		UserID:    bid.UserID.String(),
		Amount:    bid.Amount,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	}
	if err := s.eventPub.PublishBidEvent(ctx, event); err != nil {
		s.log.Warn("failed to publish bid event",
			"auction_id", event.AuctionID, "type", string(eventType), "error", err)
	}
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrVersionConflict)
}
