package services

import (
	"context"
	"encoding/json"
	"testing"

	"auction-service/internal/domain"
	"auction-service/internal/infrastructure/memory"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// scriptedQueue replays fixed payloads through the consumer's handler and
// records the ack decision per message.
type scriptedQueue struct {
	payloads [][]byte
	acked    []bool
}

func (q *scriptedQueue) PublishBid(context.Context, *domain.BidMessage) error {
	return nil
}

func (q *scriptedQueue) Consume(ctx context.Context, handler domain.BidHandler) error {
	for _, payload := range q.payloads {
		err := handler(ctx, payload)
		q.acked = append(q.acked, err == nil)
	}
	return nil
}

func bidPayload(t *testing.T, auctionID uuid.UUID, amount int64) []byte {
	t.Helper()
	data, err := json.Marshal(domain.BidMessage{
		AuctionID: auctionID,
		UserID:    uuid.New(),
		Amount:    decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
	return data
}

func newConsumerFixture(t *testing.T, repo domain.AuctionRepository, payloads ...[]byte) (*BidConsumer, *scriptedQueue) {
	t.Helper()
	queue := &scriptedQueue{payloads: payloads}
	svc := NewBidService(repo, nil, 0, logger.NewNop())
	return NewBidConsumer(queue, svc, logger.NewNop()), queue
}

func TestBidConsumer_AcceptedBidIsAcked(t *testing.T) {
	repo := memory.NewAuctionRepository()
	auction := openAuction(100)
	seedAuction(t, repo, auction)

	consumer, queue := newConsumerFixture(t, repo, bidPayload(t, auction.ID, 150))
	require.NoError(t, consumer.Start(context.Background()))

	require.Equal(t, []bool{true}, queue.acked)

	stored, err := repo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Len(t, stored.Bids, 1)
}

func TestBidConsumer_RejectedBidIsAcked(t *testing.T) {
	repo := memory.NewAuctionRepository()
	auction := openAuction(100, 200)
	seedAuction(t, repo, auction)

	consumer, queue := newConsumerFixture(t, repo, bidPayload(t, auction.ID, 150))
	require.NoError(t, consumer.Start(context.Background()))

	// A business rejection is a valid outcome, not a delivery failure.
	require.Equal(t, []bool{true}, queue.acked)

	stored, err := repo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Len(t, stored.Bids, 1)
}

func TestBidConsumer_UnknownAuctionIsAcked(t *testing.T) {
	repo := memory.NewAuctionRepository()

	consumer, queue := newConsumerFixture(t, repo, bidPayload(t, uuid.New(), 150))
	require.NoError(t, consumer.Start(context.Background()))

	// The auction will never reappear, so redelivery is futile.
	require.Equal(t, []bool{true}, queue.acked)
}

func TestBidConsumer_MalformedPayloadIsAckedWithoutEngineCall(t *testing.T) {
	repo := memory.NewAuctionRepository()
	auction := openAuction(100)
	seedAuction(t, repo, auction)

	payloads := [][]byte{
		[]byte(`{not json`),
		[]byte(`{"auctionId":"not-a-uuid","userId":"also-not","amount":1}`),
		[]byte(`{}`),
	}
	consumer, queue := newConsumerFixture(t, repo, payloads...)
	require.NoError(t, consumer.Start(context.Background()))

	require.Equal(t, []bool{true, true, true}, queue.acked)

	stored, err := repo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Bids, "malformed messages must not reach the engine")
}

func TestBidConsumer_NonPositiveAmountIsDiscarded(t *testing.T) {
	repo := memory.NewAuctionRepository()
	auction := openAuction(0)
	seedAuction(t, repo, auction)

	data, err := json.Marshal(domain.BidMessage{
		AuctionID: auction.ID,
		UserID:    uuid.New(),
		Amount:    decimal.Zero,
	})
	require.NoError(t, err)

	consumer, queue := newConsumerFixture(t, repo, data)
	require.NoError(t, consumer.Start(context.Background()))

	require.Equal(t, []bool{true}, queue.acked)

	stored, err := repo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Bids)
}

func TestBidConsumer_TransientFailureIsNacked(t *testing.T) {
	inner := memory.NewAuctionRepository()
	auction := openAuction(100)
	seedAuction(t, inner, auction)

	payload := bidPayload(t, auction.ID, 150)

	t.Run("conflict_exhausted", func(t *testing.T) {
		queue := &scriptedQueue{payloads: [][]byte{payload}}
		repo := &conflictingRepo{AuctionRepository: inner, conflicts: 1000}
		svc := NewBidService(repo, nil, 5, logger.NewNop())
		consumer := NewBidConsumer(queue, svc, logger.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.Equal(t, []bool{false}, queue.acked)
	})

	t.Run("storage_error", func(t *testing.T) {
		queue := &scriptedQueue{payloads: [][]byte{payload}}
		svc := NewBidService(&brokenRepo{AuctionRepository: inner}, nil, 5, logger.NewNop())
		consumer := NewBidConsumer(queue, svc, logger.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.Equal(t, []bool{false}, queue.acked)
	})
}

func TestBidConsumer_RedeliveredDuplicateIsAckedWithoutDuplicateEntry(t *testing.T) {
	repo := memory.NewAuctionRepository()
	auction := openAuction(100)
	seedAuction(t, repo, auction)

	msg := domain.BidMessage{
		BidID:     uuid.New(),
		AuctionID: auction.ID,
		UserID:    uuid.New(),
		Amount:    decimal.NewFromInt(150),
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	// Same delivery twice: at-least-once redelivery of an applied bid.
	consumer, queue := newConsumerFixture(t, repo, data, data)
	require.NoError(t, consumer.Start(context.Background()))

	require.Equal(t, []bool{true, true}, queue.acked)

	stored, err := repo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Len(t, stored.Bids, 1)
}
