package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// AddProduct registers a product and prints the assigned id.
func (a *App) AddProduct(ctx context.Context, name, url string, target decimal.Decimal) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := a.newService(store)
	if err != nil {
		return err
	}

	product, err := svc.Register(ctx, name, url, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "added product %d: %s (target %s)\n", product.ID, product.Name, product.TargetPrice.StringFixed(2))
	return nil
}

// ListProducts prints all registered products with their latest price.
func (a *App) ListProducts(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	products, err := store.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(os.Stdout, "no products registered")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tName\tTarget\tLatest\tObserved (UTC)\tURL")

	for _, product := range products {
		latest, ok, err := store.LatestObservation(ctx, product.ID)
		if err != nil {
			return err
		}
		latestPrice, observedAt := "-", "-"
		if ok {
			latestPrice = latest.Price.StringFixed(2)
			observedAt = latest.ObservedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(
			writer,
			"%d\t%s\t%s\t%s\t%s\t%s\n",
			product.ID,
			product.Name,
			product.TargetPrice.StringFixed(2),
			latestPrice,
			observedAt,
			product.URL,
		)
	}

	return writer.Flush()
}

// UpdateProduct rewrites a product's name, URL, and target price.
func (a *App) UpdateProduct(ctx context.Context, id int64, name, url string, target decimal.Decimal) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := a.newService(store)
	if err != nil {
		return err
	}

	product, err := svc.Update(ctx, id, name, url, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "updated product %d: %s (target %s)\n", product.ID, product.Name, product.TargetPrice.StringFixed(2))
	return nil
}

// RemoveProduct deletes a product and its observation history.
func (a *App) RemoveProduct(ctx context.Context, id int64) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := a.newService(store)
	if err != nil {
		return err
	}

	if err := svc.Remove(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "removed product %d and its history\n", id)
	return nil
}
