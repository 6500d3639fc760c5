package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAuction_IsOpen(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		status  AuctionStatus
		start   time.Time
		end     time.Time
		expects bool
	}{
		{"ongoing_inside_window", AuctionOnGoing, now.Add(-time.Hour), now.Add(time.Hour), true},
		{"ongoing_at_start_instant", AuctionOnGoing, now, now.Add(time.Hour), true},
		{"ongoing_at_end_instant", AuctionOnGoing, now.Add(-time.Hour), now, false},
		{"ongoing_before_window", AuctionOnGoing, now.Add(time.Minute), now.Add(time.Hour), false},
		{"ongoing_after_window", AuctionOnGoing, now.Add(-2*time.Hour), now.Add(-time.Hour), false},
		{"draft_inside_window", AuctionDraft, now.Add(-time.Hour), now.Add(time.Hour), false},
		{"closed_inside_window", AuctionClosed, now.Add(-time.Hour), now.Add(time.Hour), false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			auction := &Auction{
				Status:    tc.status,
				StartTime: tc.start,
				EndTime:   tc.end,
			}
			require.Equal(t, tc.expects, auction.IsOpen(now))
		})
	}
}

func TestAuction_HighestBid(t *testing.T) {
	auction := &Auction{}

	_, ok := auction.HighestBid()
	require.False(t, ok)

	auction.Bids = []Bid{
		{Amount: decimal.NewFromInt(150)},
		{Amount: decimal.NewFromInt(200)},
		{Amount: decimal.NewFromInt(175)}, // legacy out-of-order document
	}

	highest, ok := auction.HighestBid()
	require.True(t, ok)
	require.True(t, highest.Amount.Equal(decimal.NewFromInt(200)))
}

func TestAuction_CloneDoesNotAliasBids(t *testing.T) {
	auction := &Auction{
		ID:   uuid.New(),
		Bids: []Bid{{Amount: decimal.NewFromInt(100)}},
	}

	clone := auction.Clone()
	clone.Bids = append(clone.Bids, Bid{Amount: decimal.NewFromInt(200)})
	clone.Bids[0].Amount = decimal.NewFromInt(999)

	require.Len(t, auction.Bids, 1)
	require.True(t, auction.Bids[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"all", "furniture", "porcelain", "jewelry", "art", "silverware", "antiques"} {
		category, err := ParseCategory(valid)
		require.NoError(t, err)
		require.Equal(t, valid, category.String())
	}

	for _, invalid := range []string{"", "Furniture", "cars", "antiques "} {
		_, err := ParseCategory(invalid)
		require.ErrorIs(t, err, ErrInvalidCategory, "input %q", invalid)
	}
}

func TestAuctionStatus_String(t *testing.T) {
	require.Equal(t, "draft", AuctionDraft.String())
	require.Equal(t, "ongoing", AuctionOnGoing.String())
	require.Equal(t, "closed", AuctionClosed.String())
	require.Equal(t, "unknown", AuctionStatus(42).String())
}
