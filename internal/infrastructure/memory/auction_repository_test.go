package memory

import (
	"context"
	"testing"
	"time"

	"auction-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func fixtureAuction(category domain.Category, status domain.AuctionStatus) *domain.Auction {
	now := time.Now().UTC()
	return &domain.Auction{
		ID:            uuid.New(),
		Title:         "Mahogany sideboard",
		Category:      category,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		Status:        status,
		StartingPrice: decimal.NewFromInt(250),
		Version:       1,
	}
}

func TestAuctionRepository_InsertAndGet(t *testing.T) {
	repo := NewAuctionRepository()
	ctx := context.Background()

	auction := fixtureAuction(domain.CategoryFurniture, domain.AuctionOnGoing)
	require.NoError(t, repo.Insert(ctx, auction))

	stored, err := repo.GetByID(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, auction.ID, stored.ID)

	// The stored copy must not alias the caller's value.
	stored.Title = "mutated"
	again, err := repo.GetByID(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, "Mahogany sideboard", again.Title)

	require.ErrorIs(t, repo.Insert(ctx, auction), domain.ErrDuplicateID)
}

func TestAuctionRepository_GetByID_NotFound(t *testing.T) {
	repo := NewAuctionRepository()

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionRepository_FindAll_Filtering(t *testing.T) {
	repo := NewAuctionRepository()
	ctx := context.Background()

	art := fixtureAuction(domain.CategoryArt, domain.AuctionOnGoing)
	furnitureOpen := fixtureAuction(domain.CategoryFurniture, domain.AuctionOnGoing)
	furnitureClosed := fixtureAuction(domain.CategoryFurniture, domain.AuctionClosed)

	for _, a := range []*domain.Auction{art, furnitureOpen, furnitureClosed} {
		require.NoError(t, repo.Insert(ctx, a))
	}

	all, err := repo.FindAll(ctx, domain.AuctionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	furniture := domain.CategoryFurniture
	byCategory, err := repo.FindAll(ctx, domain.AuctionFilter{Category: &furniture})
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	closed := domain.AuctionClosed
	byBoth, err := repo.FindAll(ctx, domain.AuctionFilter{Category: &furniture, Status: &closed})
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	require.Equal(t, furnitureClosed.ID, byBoth[0].ID)
}

func TestAuctionRepository_Replace_VersionCheck(t *testing.T) {
	repo := NewAuctionRepository()
	ctx := context.Background()

	auction := fixtureAuction(domain.CategoryArt, domain.AuctionOnGoing)
	require.NoError(t, repo.Insert(ctx, auction))

	updated := auction.Clone()
	updated.Title = "updated"
	require.NoError(t, repo.Replace(ctx, auction.ID, updated, 1))
	require.Equal(t, int64(2), updated.Version)

	// Replaying the same expected version loses: the version moved on.
	stale := auction.Clone()
	require.ErrorIs(t, repo.Replace(ctx, auction.ID, stale, 1), domain.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, "updated", stored.Title)
	require.Equal(t, int64(2), stored.Version)

	require.ErrorIs(t, repo.Replace(ctx, uuid.New(), updated, 2), domain.ErrAuctionNotFound)
}

func TestAuctionRepository_Delete(t *testing.T) {
	repo := NewAuctionRepository()
	ctx := context.Background()

	auction := fixtureAuction(domain.CategoryArt, domain.AuctionOnGoing)
	require.NoError(t, repo.Insert(ctx, auction))

	require.NoError(t, repo.Delete(ctx, auction.ID))
	require.ErrorIs(t, repo.Delete(ctx, auction.ID), domain.ErrAuctionNotFound)
}
