package services

import (
	"context"
	"errors"
	"time"

	"auction-service/internal/domain"
	"auction-service/pkg/logger"

	"github.com/robfig/cron/v3"
)

// LifecycleSweeper reconciles stored auction status with the time window:
// draft auctions whose window has started are opened, ongoing auctions whose
// window has ended are closed. Transitions use the version-checked replace so
// a sweep racing a concurrent bid loses cleanly and catches up on the next
// run. Leader election keeps a multi-instance deployment down to one sweeper.
type LifecycleSweeper struct {
	cron       *cron.Cron
	repo       domain.AuctionRepository
	leader     domain.LeaderElection
	feed       FeedCloser
	instanceID string
	now        domain.Clock
	log        logger.Logger
}

// FeedCloser disconnects live-feed watchers of an auction once it closes.
type FeedCloser interface {
	CloseAuction(auctionID string)
}

func NewLifecycleSweeper(repo domain.AuctionRepository, leader domain.LeaderElection,
	instanceID string, log logger.Logger) *LifecycleSweeper {
	return &LifecycleSweeper{
		cron:       cron.New(cron.WithSeconds()),
		repo:       repo,
		leader:     leader,
		instanceID: instanceID,
		now:        time.Now,
		log:        log,
	}
}

// SetFeedCloser attaches the live feed so watchers are disconnected when the
// sweeper closes an auction. Optional.
func (s *LifecycleSweeper) SetFeedCloser(feed FeedCloser) {
	s.feed = feed
}

func (s *LifecycleSweeper) Start(ctx context.Context) error {
	s.log.Info("starting lifecycle sweeper")

	_, err := s.cron.AddFunc("@every 30s", func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *LifecycleSweeper) Stop() error {
	s.log.Info("stopping lifecycle sweeper")
	s.cron.Stop()
	return nil
}

// Sweep runs one reconciliation pass. Exported so tests and the startup path
// can run it without the cron schedule.
func (s *LifecycleSweeper) Sweep(ctx context.Context) {
	if s.leader != nil {
		isLeader, err := s.leader.IsLeader(ctx, s.instanceID)
		if err != nil {
			s.log.Error("leader check failed, skipping sweep", "error", err)
			return
		}
		if !isLeader {
			return
		}
	}

	now := s.now().UTC()

	for _, status := range []domain.AuctionStatus{domain.AuctionDraft, domain.AuctionOnGoing} {
		status := status
		auctions, err := s.repo.FindAll(ctx, domain.AuctionFilter{Status: &status})
		if err != nil {
			s.log.Error("failed to list auctions for sweep", "status", status.String(), "error", err)
			continue
		}

		for _, auction := range auctions {
			next, ok := nextStatus(auction, now)
			if !ok {
				continue
			}
			s.transition(ctx, auction, next, now)
		}
	}
}

func nextStatus(a *domain.Auction, now time.Time) (domain.AuctionStatus, bool) {
	switch a.Status {
	case domain.AuctionDraft:
		if !now.Before(a.StartTime) {
			if now.Before(a.EndTime) {
				return domain.AuctionOnGoing, true
			}
			return domain.AuctionClosed, true
		}
	case domain.AuctionOnGoing:
		if !now.Before(a.EndTime) {
			return domain.AuctionClosed, true
		}
	}
	return a.Status, false
}

func (s *LifecycleSweeper) transition(ctx context.Context, auction *domain.Auction, next domain.AuctionStatus, now time.Time) {
	updated := auction.Clone()
	updated.Status = next
	updated.UpdatedAt = now

	err := s.repo.Replace(ctx, auction.ID, updated, auction.Version)
	if errors.Is(err, domain.ErrVersionConflict) {
		// Lost to a concurrent bid or update; next sweep will reconcile.
		s.log.Debug("sweep transition lost race", "auction_id", auction.ID.String())
		return
	}
	if err != nil {
		s.log.Error("sweep transition failed",
			"auction_id", auction.ID.String(), "error", err)
		return
	}

	s.log.Info("auction status transitioned",
		"auction_id", auction.ID.String(),
		"from", auction.Status.String(),
		"to", next.String())

	if next == domain.AuctionClosed && s.feed != nil {
		s.feed.CloseAuction(auction.ID.String())
	}
}
