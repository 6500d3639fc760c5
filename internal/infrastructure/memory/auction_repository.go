package memory

import (
	"context"
	"sync"

	"auction-service/internal/domain"

	"github.com/google/uuid"
)

// AuctionRepository is an in-memory, versioned implementation of the auction
// document store. It honors the same conditional-replace contract as the MySQL
// repository, which makes it suitable for tests and local development.
type AuctionRepository struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*domain.Auction
}

func NewAuctionRepository() *AuctionRepository {
	return &AuctionRepository{
		auctions: make(map[uuid.UUID]*domain.Auction),
	}
}

func (r *AuctionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return auction.Clone(), nil
}

func (r *AuctionRepository) FindAll(_ context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var auctions []*domain.Auction
	for _, auction := range r.auctions {
		if filter.Category != nil && auction.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && auction.Status != *filter.Status {
			continue
		}
		auctions = append(auctions, auction.Clone())
	}
	return auctions, nil
}

func (r *AuctionRepository) Insert(_ context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.ID]; ok {
		return domain.ErrDuplicateID
	}
	r.auctions[auction.ID] = auction.Clone()
	return nil
}

func (r *AuctionRepository) Replace(_ context.Context, id uuid.UUID, auction *domain.Auction, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.auctions[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	auction.Version = expectedVersion + 1
	r.auctions[id] = auction.Clone()
	return nil
}

func (r *AuctionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[id]; !ok {
		return domain.ErrAuctionNotFound
	}
	delete(r.auctions, id)
	return nil
}
