package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const (
	// observed_at defaults to the database clock so "latest" ordering never
	// depends on skewed client clocks.
	insertObservationSQL = `INSERT INTO price_observations (product_id, price, observed_at)
    VALUES ($1, $2, COALESCE($3, now()))
    RETURNING id, observed_at;`

	latestObservationSQL = `SELECT id, product_id, price::text, observed_at
    FROM price_observations
    WHERE product_id = $1
    ORDER BY observed_at DESC, id DESC
    LIMIT 1;`

	// NULLIF turns a zero limit into LIMIT NULL, i.e. the full history.
	listHistorySQL = `SELECT id, product_id, price::text, observed_at
    FROM price_observations
    WHERE product_id = $1
    ORDER BY observed_at DESC, id DESC
    LIMIT NULLIF($2, 0);`

	statsSQL = `SELECT COUNT(*),
        COALESCE(MIN(price)::text, '0'),
        COALESCE(MAX(price)::text, '0'),
        COALESCE(AVG(price)::text, '0')
    FROM price_observations
    WHERE product_id = $1;`

	foreignKeyViolationCode = "23503"
)

// AppendObservation records one price reading. A nil observedAt uses the
// server-side timestamp. Fails with ErrUnknownProduct when the product row is
// absent, enforced by the foreign key inside the single insert.
func (s *Store) AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, observedAt *time.Time) (PriceObservation, error) {
	pool, err := s.getPool()
	if err != nil {
		return PriceObservation{}, err
	}

	obs := PriceObservation{ProductID: productID, Price: price}
	row := pool.QueryRow(ctx, insertObservationSQL, productID, price.String(), observedAt)
	if scanErr := row.Scan(&obs.ID, &obs.ObservedAt); scanErr != nil {
		var pgErr *pgconn.PgError
		if errors.As(scanErr, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return PriceObservation{}, ErrUnknownProduct
		}
		return PriceObservation{}, fmt.Errorf("append observation: %w", scanErr)
	}
	return obs, nil
}

// LatestObservation returns the observation with the maximum timestamp, or
// ok=false when the product has no history yet.
func (s *Store) LatestObservation(ctx context.Context, productID int64) (PriceObservation, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return PriceObservation{}, false, err
	}

	rows, queryErr := pool.Query(ctx, latestObservationSQL, productID)
	if queryErr != nil {
		return PriceObservation{}, false, fmt.Errorf("latest observation: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return PriceObservation{}, false, rows.Err()
		}
		return PriceObservation{}, false, nil
	}

	obs, scanErr := scanObservation(rows)
	if scanErr != nil {
		return PriceObservation{}, false, scanErr
	}
	return obs, true, nil
}

// ListHistory returns observations newest first. A limit of zero or less
// returns the full history. An empty history yields an empty slice, not an
// error; every call restarts from the store.
func (s *Store) ListHistory(ctx context.Context, productID int64, limit int) ([]PriceObservation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}

	rows, queryErr := pool.Query(ctx, listHistorySQL, productID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list history: %w", queryErr)
	}
	defer rows.Close()

	history := make([]PriceObservation, 0, limit)
	for rows.Next() {
		obs, scanErr := scanObservation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		history = append(history, obs)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return history, nil
}

// Stats aggregates min/max/mean over all observations. ok=false signals an
// empty history; the SQL aggregates never divide by zero.
func (s *Store) Stats(ctx context.Context, productID int64) (PriceStats, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return PriceStats{}, false, err
	}

	var (
		count   int64
		minStr  string
		maxStr  string
		meanStr string
	)
	row := pool.QueryRow(ctx, statsSQL, productID)
	if scanErr := row.Scan(&count, &minStr, &maxStr, &meanStr); scanErr != nil {
		return PriceStats{}, false, fmt.Errorf("observation stats: %w", scanErr)
	}
	if count == 0 {
		return PriceStats{}, false, nil
	}

	stats := PriceStats{Count: count}
	var convErr error
	if stats.Min, convErr = decimal.NewFromString(minStr); convErr != nil {
		return PriceStats{}, false, fmt.Errorf("parse min price: %w", convErr)
	}
	if stats.Max, convErr = decimal.NewFromString(maxStr); convErr != nil {
		return PriceStats{}, false, fmt.Errorf("parse max price: %w", convErr)
	}
	if stats.Mean, convErr = decimal.NewFromString(meanStr); convErr != nil {
		return PriceStats{}, false, fmt.Errorf("parse mean price: %w", convErr)
	}
	return stats, true, nil
}

func scanObservation(rows pgx.Rows) (PriceObservation, error) {
	var (
		obs      PriceObservation
		priceStr string
	)

	if err := rows.Scan(&obs.ID, &obs.ProductID, &priceStr, &obs.ObservedAt); err != nil {
		return PriceObservation{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return PriceObservation{}, fmt.Errorf("parse observed price: %w", err)
	}
	obs.Price = price
	return obs, nil
}
