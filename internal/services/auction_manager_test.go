package services

import (
	"context"
	"testing"
	"time"

	"auction-service/internal/domain"
	"auction-service/internal/infrastructure/memory"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func managerFixture() (*AuctionManager, *memory.AuctionRepository) {
	repo := memory.NewAuctionRepository()
	return NewAuctionManager(repo, logger.NewNop()), repo
}

func createInput(start, end time.Time) CreateAuctionInput {
	return CreateAuctionInput{
		Title:         "Silver candelabra",
		Description:   "Pair, early 20th century",
		Location:      "Copenhagen",
		Category:      domain.CategorySilverware,
		StartTime:     start,
		EndTime:       end,
		StartingPrice: decimal.NewFromInt(500),
		MinimumPrice:  decimal.NewFromInt(800),
	}
}

func TestAuctionManager_CreateAuction(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		input          CreateAuctionInput
		expectedStatus domain.AuctionStatus
		expectError    error
	}{
		{
			name:           "future_window_is_draft",
			input:          createInput(now.Add(time.Hour), now.Add(2*time.Hour)),
			expectedStatus: domain.AuctionDraft,
		},
		{
			name:           "current_window_is_ongoing",
			input:          createInput(now.Add(-time.Hour), now.Add(time.Hour)),
			expectedStatus: domain.AuctionOnGoing,
		},
		{
			name:           "past_window_is_closed",
			input:          createInput(now.Add(-2*time.Hour), now.Add(-time.Hour)),
			expectedStatus: domain.AuctionClosed,
		},
		{
			name:        "start_after_end",
			input:       createInput(now.Add(2*time.Hour), now.Add(time.Hour)),
			expectError: domain.ErrInvalidAuction,
		},
		{
			name:        "start_equals_end",
			input:       createInput(now, now),
			expectError: domain.ErrInvalidAuction,
		},
		{
			name: "negative_starting_price",
			input: func() CreateAuctionInput {
				in := createInput(now.Add(-time.Hour), now.Add(time.Hour))
				in.StartingPrice = decimal.NewFromInt(-1)
				return in
			}(),
			expectError: domain.ErrInvalidAuction,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			manager, repo := managerFixture()
			auction, err := manager.CreateAuction(context.Background(), tc.input)

			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				return
			}

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, auction.ID)
			require.Equal(t, tc.expectedStatus, auction.Status)
			require.Equal(t, int64(1), auction.Version)
			require.Empty(t, auction.Bids)

			stored, err := repo.GetByID(context.Background(), auction.ID)
			require.NoError(t, err)
			require.Equal(t, auction.ID, stored.ID)
		})
	}
}

func TestAuctionManager_GetAuction_NotFound(t *testing.T) {
	manager, _ := managerFixture()

	_, err := manager.GetAuction(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionManager_ListAuctions_ByCategory(t *testing.T) {
	manager, _ := managerFixture()
	now := time.Now().UTC()

	_, err := manager.CreateAuction(context.Background(), createInput(now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	artInput := createInput(now.Add(-time.Hour), now.Add(time.Hour))
	artInput.Category = domain.CategoryArt
	art, err := manager.CreateAuction(context.Background(), artInput)
	require.NoError(t, err)

	all, err := manager.ListAuctions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// CategoryAll behaves like no filter.
	category := domain.CategoryAll
	everything, err := manager.ListAuctions(context.Background(), &category)
	require.NoError(t, err)
	require.Len(t, everything, 2)

	category = domain.CategoryArt
	onlyArt, err := manager.ListAuctions(context.Background(), &category)
	require.NoError(t, err)
	require.Len(t, onlyArt, 1)
	require.Equal(t, art.ID, onlyArt[0].ID)

	category = domain.CategoryFurniture
	none, err := manager.ListAuctions(context.Background(), &category)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestAuctionManager_UpdateAuction_KeepsBids(t *testing.T) {
	manager, repo := managerFixture()
	now := time.Now().UTC()

	auction, err := manager.CreateAuction(context.Background(), createInput(now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	// A bid lands between the read and the update via the engine.
	svc := NewBidService(repo, nil, 0, logger.NewNop())
	result, err := svc.PlaceBid(context.Background(), auction.ID, *bidOf(600))
	require.NoError(t, err)
	require.True(t, result.Accepted())

	updated, err := manager.UpdateAuction(context.Background(), auction.ID, UpdateAuctionInput{
		Title:         "Silver candelabra (restored)",
		Description:   auction.Description,
		Location:      auction.Location,
		Category:      auction.Category,
		StartTime:     auction.StartTime,
		EndTime:       auction.EndTime,
		StartingPrice: auction.StartingPrice,
		MinimumPrice:  auction.MinimumPrice,
		Status:        domain.AuctionOnGoing,
	})
	require.NoError(t, err)
	require.Equal(t, "Silver candelabra (restored)", updated.Title)
	require.Len(t, updated.Bids, 1, "update must not drop accepted bids")
}

func TestAuctionManager_DeleteAuction(t *testing.T) {
	manager, _ := managerFixture()
	now := time.Now().UTC()

	auction, err := manager.CreateAuction(context.Background(), createInput(now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, manager.DeleteAuction(context.Background(), auction.ID))
	_, err = manager.GetAuction(context.Background(), auction.ID)
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)

	err = manager.DeleteAuction(context.Background(), auction.ID)
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}
