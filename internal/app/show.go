package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Show prints a product's observation history, newest first.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	product, err := store.GetProduct(ctx, opts.ProductID)
	if err != nil {
		return err
	}

	history, err := store.ListHistory(ctx, product.ID, opts.Limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(os.Stdout, "no observations recorded for %s\n", product.Name)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%s (target %s)\n", product.Name, product.TargetPrice.StringFixed(2))

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Observed (UTC)\tPrice")
	for _, obs := range history {
		fmt.Fprintf(writer, "%s\t%s\n", obs.ObservedAt.UTC().Format(time.RFC3339), obs.Price.StringFixed(2))
	}
	return writer.Flush()
}

// Stats prints aggregate history figures for a product.
func (a *App) Stats(ctx context.Context, productID int64) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	product, err := store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	stats, ok, err := store.Stats(ctx, product.ID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(os.Stdout, "no observations recorded for %s\n", product.Name)
		return nil
	}

	latest, _, err := store.LatestObservation(ctx, product.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s (target %s)\n", product.Name, product.TargetPrice.StringFixed(2))
	fmt.Fprintf(os.Stdout, "observations: %d\n", stats.Count)
	fmt.Fprintf(os.Stdout, "latest: %s\n", latest.Price.StringFixed(2))
	fmt.Fprintf(os.Stdout, "min: %s\n", stats.Min.StringFixed(2))
	fmt.Fprintf(os.Stdout, "max: %s\n", stats.Max.StringFixed(2))
	fmt.Fprintf(os.Stdout, "mean: %s\n", stats.Mean.StringFixed(2))
	return nil
}
