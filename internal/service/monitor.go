package service

import (
	"context"
	"sync"

	"price-tracker/internal/alerting"
	"price-tracker/internal/storage"
)

// MonitorResult bundles the freshly persisted observation and the alert
// decision. "No alert" is a normal outcome, never an error.
type MonitorResult struct {
	Product     storage.Product
	Observation storage.PriceObservation
	Alert       alerting.Decision
}

// BatchOutcome is the per-product result of a batch monitor run.
type BatchOutcome struct {
	ProductID int64
	Result    MonitorResult
	Err       error
}

// Monitor runs one cycle for a product. selector overrides the extractor's
// fallback heuristics when non-empty. Fetch and extraction failures abort
// the cycle before anything is written to history.
func (s *Service) Monitor(ctx context.Context, productID int64, selector string) (MonitorResult, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return MonitorResult{}, err
	}

	html, err := s.fetcher.FetchPage(ctx, product.URL)
	if err != nil {
		return MonitorResult{}, err
	}

	price, err := s.extractor.Extract(html, selector)
	if err != nil {
		return MonitorResult{}, err
	}

	obs, err := s.observations.AppendObservation(ctx, product.ID, price, nil)
	if err != nil {
		return MonitorResult{}, err
	}

	decision := alerting.Evaluate(obs.Price, product.TargetPrice)

	s.logger.Info().Int64("product_id", product.ID).
		Str("price", obs.Price.StringFixed(2)).
		Str("target", product.TargetPrice.StringFixed(2)).
		Bool("alert", decision.Fires).
		Msg("price observed")

	if decision.Fires && s.notifier != nil {
		note := alerting.Notification{
			ProductID:     product.ID,
			ProductName:   product.Name,
			ObservedPrice: obs.Price,
			TargetPrice:   product.TargetPrice,
			Delta:         decision.Delta,
			ObservedAt:    obs.ObservedAt,
		}
		// Delivery failure never rolls back the persisted observation.
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to dispatch alert")
		}
	}

	return MonitorResult{Product: product, Observation: obs, Alert: decision}, nil
}

// MonitorBatch processes each product independently with a bounded worker
// pool. One product's failure never aborts its siblings; outcomes come back
// in input order.
func (s *Service) MonitorBatch(ctx context.Context, productIDs []int64) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(productIDs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				id := productIDs[idx]
				result, err := s.Monitor(ctx, id, "")
				outcomes[idx] = BatchOutcome{ProductID: id, Result: result, Err: err}
			}
		}()
	}

	for idx := range productIDs {
		select {
		case <-ctx.Done():
			outcomes[idx] = BatchOutcome{ProductID: productIDs[idx], Err: ctx.Err()}
			continue
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// MonitorAll runs a batch cycle over every registered product.
func (s *Service) MonitorAll(ctx context.Context) ([]BatchOutcome, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(products))
	for i, product := range products {
		ids[i] = product.ID
	}
	return s.MonitorBatch(ctx, ids), nil
}
