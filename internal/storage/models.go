package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a tracked item defined by a source URL and a target price.
type Product struct {
	ID          int64
	Name        string
	URL         string
	TargetPrice decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriceObservation is one timestamped price reading for a product. Rows are
// append-only; they are never updated and disappear only when the owning
// product is removed.
type PriceObservation struct {
	ID         int64
	ProductID  int64
	Price      decimal.Decimal
	ObservedAt time.Time
}

// PriceStats aggregates a product's observation history.
type PriceStats struct {
	Min   decimal.Decimal
	Max   decimal.Decimal
	Mean  decimal.Decimal
	Count int64
}
