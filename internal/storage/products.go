package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	insertProductSQL = `INSERT INTO products (name, url, target_price)
    VALUES ($1, $2, $3)
    RETURNING id, created_at, updated_at;`

	listProductsSQL = `SELECT id, name, url, target_price::text, created_at, updated_at
    FROM products
    ORDER BY id;`

	getProductSQL = `SELECT id, name, url, target_price::text, created_at, updated_at
    FROM products
    WHERE id = $1;`

	updateProductSQL = `UPDATE products
    SET name = $2, url = $3, target_price = $4, updated_at = now()
    WHERE id = $1
    RETURNING id, name, url, target_price::text, created_at, updated_at;`

	deleteProductSQL = `DELETE FROM products WHERE id = $1;`
)

// InsertProduct registers a product and returns the stored row.
func (s *Store) InsertProduct(ctx context.Context, name, url string, target decimal.Decimal) (Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return Product{}, err
	}

	product := Product{Name: name, URL: url, TargetPrice: target}
	row := pool.QueryRow(ctx, insertProductSQL, name, url, target.String())
	if scanErr := row.Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt); scanErr != nil {
		return Product{}, fmt.Errorf("insert product: %w", scanErr)
	}
	return product, nil
}

// ListProducts returns all products in stable id order.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listProductsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list products: %w", queryErr)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		products = append(products, product)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return products, nil
}

// GetProduct resolves a single product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return Product{}, err
	}

	rows, queryErr := pool.Query(ctx, getProductSQL, id)
	if queryErr != nil {
		return Product{}, fmt.Errorf("get product: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return Product{}, rows.Err()
		}
		return Product{}, ErrUnknownProduct
	}
	return scanProduct(rows)
}

// UpdateProduct rewrites a product's mutable fields.
func (s *Store) UpdateProduct(ctx context.Context, id int64, name, url string, target decimal.Decimal) (Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return Product{}, err
	}

	rows, queryErr := pool.Query(ctx, updateProductSQL, id, name, url, target.String())
	if queryErr != nil {
		return Product{}, fmt.Errorf("update product: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return Product{}, rows.Err()
		}
		return Product{}, ErrUnknownProduct
	}
	return scanProduct(rows)
}

// DeleteProduct removes a product; observations go with it via cascade.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	cmdTag, execErr := pool.Exec(ctx, deleteProductSQL, id)
	if execErr != nil {
		return fmt.Errorf("delete product: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUnknownProduct
	}
	return nil
}

func scanProduct(rows pgx.Rows) (Product, error) {
	var (
		product   Product
		targetStr string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := rows.Scan(&product.ID, &product.Name, &product.URL, &targetStr, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrUnknownProduct
		}
		return Product{}, err
	}

	target, err := decimal.NewFromString(targetStr)
	if err != nil {
		return Product{}, fmt.Errorf("parse target price: %w", err)
	}

	product.TargetPrice = target
	product.CreatedAt = createdAt
	product.UpdatedAt = updatedAt
	return product, nil
}
