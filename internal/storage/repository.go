package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	listPriceHistorySQL = `SELECT
        asset_id,
        ts_ms,
        price::text
    FROM price_history
    WHERE asset_id = $1
      AND ts_ms >= $2
    ORDER BY ts_ms;`

	pingSQL = `SELECT 1;`
)

// PriceHistoryReader exposes read access to archived ticks.
type PriceHistoryReader interface {
	ListPriceHistory(ctx context.Context, assetID int, since time.Time) ([]PricePoint, error)
}

// Store reads the price_history table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	var one int
	if err := pool.QueryRow(ctx, pingSQL).Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// ListPriceHistory lists the ticks of an asset at or after since, oldest first.
func (s *Store) ListPriceHistory(ctx context.Context, assetID int, since time.Time) ([]PricePoint, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPriceHistorySQL, assetID, since.UnixMilli())
	if queryErr != nil {
		return nil, fmt.Errorf("list price history: %w", queryErr)
	}
	defer rows.Close()

	points := make([]PricePoint, 0)
	for rows.Next() {
		point, scanErr := scanPricePoint(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		points = append(points, point)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return points, nil
}

func scanPricePoint(rows pgx.Rows) (PricePoint, error) {
	var point PricePoint
	if err := rows.Scan(&point.AssetID, &point.TimestampMs, &point.Price); err != nil {
		return PricePoint{}, fmt.Errorf("scan price point: %w", err)
	}
	return point, nil
}

var _ PriceHistoryReader = (*Store)(nil)
