package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"price-tracker/internal/config"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrUnknownProduct indicates the referenced product does not exist.
	ErrUnknownProduct = errors.New("storage: unknown product")
)

// ProductStore defines operations owning product identity and lifecycle.
type ProductStore interface {
	InsertProduct(ctx context.Context, name, url string, target decimal.Decimal) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	UpdateProduct(ctx context.Context, id int64, name, url string, target decimal.Decimal) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ObservationStore defines operations over the append-only price history.
type ObservationStore interface {
	AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, observedAt *time.Time) (PriceObservation, error)
	LatestObservation(ctx context.Context, productID int64) (PriceObservation, bool, error)
	ListHistory(ctx context.Context, productID int64, limit int) ([]PriceObservation, error)
	Stats(ctx context.Context, productID int64) (PriceStats, bool, error)
}

// NewPool configures a PostgreSQL connection pool from runtime settings.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return pool, nil
}

// Store aggregates access to products and price observations.
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

var (
	_ ProductStore     = (*Store)(nil)
	_ ObservationStore = (*Store)(nil)
)
