package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"price-tracker/internal/storage"
)

// Register validates and stores a new product. A zero target is legal (free
// item) but worth a warning; negative targets are rejected outright.
func (s *Service) Register(ctx context.Context, name, rawURL string, target decimal.Decimal) (storage.Product, error) {
	if target.IsNegative() {
		return storage.Product{}, ErrInvalidTarget
	}
	if err := validateURL(rawURL); err != nil {
		return storage.Product{}, err
	}
	if target.IsZero() {
		s.logger.Warn().Str("name", name).Msg("registering product with zero target price")
	}

	product, err := s.products.InsertProduct(ctx, name, rawURL, target)
	if err != nil {
		return storage.Product{}, err
	}

	s.logger.Info().Int64("product_id", product.ID).Str("name", name).
		Str("target_price", target.StringFixed(2)).Msg("product registered")
	return product, nil
}

// List returns all registered products in stable id order.
func (s *Service) List(ctx context.Context) ([]storage.Product, error) {
	return s.products.ListProducts(ctx)
}

// Update rewrites a product's name, URL, and target with the same validation
// as Register.
func (s *Service) Update(ctx context.Context, id int64, name, rawURL string, target decimal.Decimal) (storage.Product, error) {
	if target.IsNegative() {
		return storage.Product{}, ErrInvalidTarget
	}
	if err := validateURL(rawURL); err != nil {
		return storage.Product{}, err
	}
	return s.products.UpdateProduct(ctx, id, name, rawURL, target)
}

// Remove deletes a product; the store cascades deletion of its observations.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("product_id", id).Msg("product removed with history")
	return nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
