package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"price-tracker/internal/service"
)

// Monitor runs one monitoring cycle for a single product or for every
// registered product and prints the outcome.
func (a *App) Monitor(ctx context.Context, opts MonitorOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := a.newService(store)
	if err != nil {
		return err
	}

	if opts.All {
		outcomes, err := svc.MonitorAll(ctx)
		if err != nil {
			return err
		}
		return printOutcomes(outcomes)
	}

	result, err := svc.Monitor(ctx, opts.ProductID, opts.Selector)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func printResult(result service.MonitorResult) {
	fmt.Fprintf(os.Stdout, "%s: %s (target %s)\n",
		result.Product.Name,
		result.Observation.Price.StringFixed(2),
		result.Product.TargetPrice.StringFixed(2),
	)
	if result.Alert.Fires {
		fmt.Fprintf(os.Stdout, "ALERT: price reached target, you save %s\n", result.Alert.Delta.StringFixed(2))
	}
}

func printOutcomes(outcomes []service.BatchOutcome) error {
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "product %d: failed: %v\n", outcome.ProductID, outcome.Err)
			continue
		}
		printResult(outcome.Result)
	}
	if failed > 0 {
		return errors.New("some products failed; see output above")
	}
	return nil
}
