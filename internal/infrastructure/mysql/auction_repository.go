package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"auction-service/internal/domain"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLAuctionRepository stores each auction aggregate as a JSON document in a
// single row. The category and status columns are denormalized copies kept for
// filtering; the version column backs the conditional replace.
//
// Schema:
//
//	CREATE TABLE auctions (
//	    id         CHAR(36)    NOT NULL PRIMARY KEY,
//	    category   VARCHAR(32) NOT NULL,
//	    status     INT         NOT NULL,
//	    version    BIGINT      NOT NULL,
//	    document   JSON        NOT NULL,
//	    INDEX idx_auctions_category (category),
//	    INDEX idx_auctions_status (status)
//	);
type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

func (r *MySQLAuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT document FROM auctions WHERE id = ?`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mysql: get auction: %w", err)
	}

	return unmarshalAuction(doc)
}

func (r *MySQLAuctionRepository) FindAll(ctx context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	query := `SELECT document FROM auctions`
	var args []interface{}
	var conds []string

	if filter.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category.String())
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, int(*filter.Status))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: find auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("mysql: scan auction: %w", err)
		}
		auction, err := unmarshalAuction(doc)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: find auctions: %w", err)
	}

	return auctions, nil
}

func (r *MySQLAuctionRepository) Insert(ctx context.Context, auction *domain.Auction) error {
	doc, err := json.Marshal(auction)
	if err != nil {
		return fmt.Errorf("mysql: marshal auction: %w", err)
	}

	query := `INSERT INTO auctions (id, category, status, version, document) VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		auction.ID.String(), auction.Category.String(), int(auction.Status), auction.Version, doc)
	if isDuplicateKey(err) {
		return domain.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("mysql: insert auction: %w", err)
	}
	return nil
}

// Replace overwrites the stored document only if the version column still
// matches the version read with the snapshot. A concurrent writer bumps the
// version, the WHERE clause misses, and the caller gets ErrVersionConflict.
func (r *MySQLAuctionRepository) Replace(ctx context.Context, id uuid.UUID, auction *domain.Auction, expectedVersion int64) error {
	auction.Version = expectedVersion + 1

	doc, err := json.Marshal(auction)
	if err != nil {
		return fmt.Errorf("mysql: marshal auction: %w", err)
	}

	query := `
        UPDATE auctions
        SET category = ?, status = ?, version = ?, document = ?
        WHERE id = ? AND version = ?
    `
	result, err := r.db.ExecContext(ctx, query,
		auction.Category.String(), int(auction.Status), auction.Version, doc,
		id.String(), expectedVersion)
	if err != nil {
		return fmt.Errorf("mysql: replace auction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mysql: replace auction: %w", err)
	}
	if affected == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM auctions WHERE id = ?`, id.String()).Scan(&one)
		if err == sql.ErrNoRows {
			return domain.ErrAuctionNotFound
		}
		if err != nil {
			return fmt.Errorf("mysql: replace auction: %w", err)
		}
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *MySQLAuctionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auctions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("mysql: delete auction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mysql: delete auction: %w", err)
	}
	if affected == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

func unmarshalAuction(doc []byte) (*domain.Auction, error) {
	var auction domain.Auction
	if err := json.Unmarshal(doc, &auction); err != nil {
		return nil, fmt.Errorf("mysql: unmarshal auction: %w", err)
	}
	return &auction, nil
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysqldrv.MySQLError
	// MySQL error 1062 (ER_DUP_ENTRY)
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
