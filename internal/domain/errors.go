package domain

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrVersionConflict = errors.New("auction was modified concurrently")
	ErrDuplicateID     = errors.New("auction id already exists")
)

// Business logic errors
var (
	ErrConflictExhausted = errors.New("bid retry budget exhausted under contention")
	ErrInvalidCategory   = errors.New("unknown auction category")
	ErrInvalidAuction    = errors.New("invalid auction")
)
