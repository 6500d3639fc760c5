package services

import (
	"context"
	"fmt"
	"time"

	"auction-service/internal/domain"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAuctionInput carries the administratively supplied fields for a new
// auction. Identity, version and timestamps are assigned by the manager.
type CreateAuctionInput struct {
	Title         string
	Description   string
	Location      string
	Image         string
	Category      domain.Category
	StartTime     time.Time
	EndTime       time.Time
	StartingPrice decimal.Decimal
	MinimumPrice  decimal.Decimal
}

// UpdateAuctionInput holds replacement values for the mutable descriptive
// fields. Bids are never updated through here; they only change through the
// bid engine.
type UpdateAuctionInput struct {
	Title         string
	Description   string
	Location      string
	Image         string
	Category      domain.Category
	StartTime     time.Time
	EndTime       time.Time
	StartingPrice decimal.Decimal
	MinimumPrice  decimal.Decimal
	Status        domain.AuctionStatus
}

// AuctionManager owns the administrative lifecycle of auctions: create, read,
// list, update, delete. Bid admission lives in BidService.
type AuctionManager struct {
	repo domain.AuctionRepository
	now  domain.Clock
	log  logger.Logger
}

func NewAuctionManager(repo domain.AuctionRepository, log logger.Logger) *AuctionManager {
	return &AuctionManager{
		repo: repo,
		now:  time.Now,
		log:  log,
	}
}

// SetClock overrides the manager clock. Tests only.
func (m *AuctionManager) SetClock(clock domain.Clock) {
	m.now = clock
}

func (m *AuctionManager) CreateAuction(ctx context.Context, input CreateAuctionInput) (*domain.Auction, error) {
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if input.StartingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: starting price must not be negative", domain.ErrInvalidAuction)
	}

	now := m.now().UTC()
	auction := &domain.Auction{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		Image:         input.Image,
		Category:      input.Category,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Status:        statusForWindow(input.StartTime, input.EndTime, now),
		StartingPrice: input.StartingPrice,
		MinimumPrice:  input.MinimumPrice,
		Bids:          []domain.Bid{},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.repo.Insert(ctx, auction); err != nil {
		return nil, fmt.Errorf("auction manager: insert auction: %w", err)
	}

	m.log.Info("auction created",
		"auction_id", auction.ID.String(),
		"category", auction.Category.String(),
		"status", auction.Status.String())
	return auction, nil
}

func (m *AuctionManager) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	auction, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auction manager: get auction %s: %w", id, err)
	}
	return auction, nil
}

// ListAuctions returns auctions, optionally narrowed by category.
// CategoryAll (or nil) lists everything.
func (m *AuctionManager) ListAuctions(ctx context.Context, category *domain.Category) ([]*domain.Auction, error) {
	filter := domain.AuctionFilter{}
	if category != nil && *category != domain.CategoryAll {
		filter.Category = category
	}

	auctions, err := m.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("auction manager: list auctions: %w", err)
	}
	return auctions, nil
}

// UpdateAuction replaces the descriptive fields of an auction while keeping
// its bid sequence intact. The replace is version-checked so an update racing
// a concurrent bid loses cleanly instead of dropping the bid.
func (m *AuctionManager) UpdateAuction(ctx context.Context, id uuid.UUID, input UpdateAuctionInput) (*domain.Auction, error) {
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if input.StartingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: starting price must not be negative", domain.ErrInvalidAuction)
	}

	auction, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auction manager: get auction %s: %w", id, err)
	}

	updated := auction.Clone()
	updated.Title = input.Title
	updated.Description = input.Description
	updated.Location = input.Location
	updated.Image = input.Image
	updated.Category = input.Category
	updated.StartTime = input.StartTime
	updated.EndTime = input.EndTime
	updated.StartingPrice = input.StartingPrice
	updated.MinimumPrice = input.MinimumPrice
	updated.Status = input.Status
	updated.UpdatedAt = m.now().UTC()

	if err := m.repo.Replace(ctx, id, updated, auction.Version); err != nil {
		return nil, fmt.Errorf("auction manager: update auction %s: %w", id, err)
	}

	m.log.Info("auction updated", "auction_id", id.String(), "status", updated.Status.String())
	return updated, nil
}

func (m *AuctionManager) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("auction manager: delete auction %s: %w", id, err)
	}
	m.log.Info("auction deleted", "auction_id", id.String())
	return nil
}

func validateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start time must be before end time", domain.ErrInvalidAuction)
	}
	return nil
}

func statusForWindow(start, end, now time.Time) domain.AuctionStatus {
	switch {
	case now.Before(start):
		return domain.AuctionDraft
	case now.Before(end):
		return domain.AuctionOnGoing
	default:
		return domain.AuctionClosed
	}
}
