package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"price-tracker/internal/alerting"
	"price-tracker/internal/extract"
	"price-tracker/internal/fetch"
	"price-tracker/internal/storage"
)

// fakeStore is an in-memory stand-in for the postgres store. Appends are
// serialized and stamped from a monotonic fake clock.
type fakeStore struct {
	mu            sync.Mutex
	nextProductID int64
	nextObsID     int64
	products      map[int64]storage.Product
	observations  []storage.PriceObservation
	clock         time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[int64]storage.Product),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) InsertProduct(ctx context.Context, name, url string, target decimal.Decimal) (storage.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextProductID++
	f.clock = f.clock.Add(time.Second)
	product := storage.Product{
		ID:          f.nextProductID,
		Name:        name,
		URL:         url,
		TargetPrice: target,
		CreatedAt:   f.clock,
		UpdatedAt:   f.clock,
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeStore) ListProducts(ctx context.Context) ([]storage.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	products := make([]storage.Product, 0, len(f.products))
	for id := int64(1); id <= f.nextProductID; id++ {
		if product, ok := f.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (f *fakeStore) GetProduct(ctx context.Context, id int64) (storage.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok {
		return storage.Product{}, storage.ErrUnknownProduct
	}
	return product, nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, id int64, name, url string, target decimal.Decimal) (storage.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok {
		return storage.Product{}, storage.ErrUnknownProduct
	}
	f.clock = f.clock.Add(time.Second)
	product.Name = name
	product.URL = url
	product.TargetPrice = target
	product.UpdatedAt = f.clock
	f.products[id] = product
	return product, nil
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[id]; !ok {
		return storage.ErrUnknownProduct
	}
	delete(f.products, id)

	kept := f.observations[:0]
	for _, obs := range f.observations {
		if obs.ProductID != id {
			kept = append(kept, obs)
		}
	}
	f.observations = kept
	return nil
}

func (f *fakeStore) AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, observedAt *time.Time) (storage.PriceObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[productID]; !ok {
		return storage.PriceObservation{}, storage.ErrUnknownProduct
	}

	f.nextObsID++
	ts := observedAt
	if ts == nil {
		f.clock = f.clock.Add(time.Second)
		stamped := f.clock
		ts = &stamped
	}
	obs := storage.PriceObservation{
		ID:         f.nextObsID,
		ProductID:  productID,
		Price:      price,
		ObservedAt: *ts,
	}
	f.observations = append(f.observations, obs)
	return obs, nil
}

func (f *fakeStore) LatestObservation(ctx context.Context, productID int64) (storage.PriceObservation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest storage.PriceObservation
	found := false
	for _, obs := range f.observations {
		if obs.ProductID != productID {
			continue
		}
		if !found || obs.ObservedAt.After(latest.ObservedAt) {
			latest = obs
			found = true
		}
	}
	return latest, found, nil
}

func (f *fakeStore) ListHistory(ctx context.Context, productID int64, limit int) ([]storage.PriceObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	history := make([]storage.PriceObservation, 0)
	for i := len(f.observations) - 1; i >= 0; i-- {
		if f.observations[i].ProductID != productID {
			continue
		}
		history = append(history, f.observations[i])
		if len(history) == limit {
			break
		}
	}
	return history, nil
}

func (f *fakeStore) Stats(ctx context.Context, productID int64) (storage.PriceStats, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var prices []decimal.Decimal
	for _, obs := range f.observations {
		if obs.ProductID == productID {
			prices = append(prices, obs.Price)
		}
	}
	if len(prices) == 0 {
		return storage.PriceStats{}, false, nil
	}

	stats := storage.PriceStats{Min: prices[0], Max: prices[0], Count: int64(len(prices))}
	sum := decimal.Zero
	for _, price := range prices {
		if price.LessThan(stats.Min) {
			stats.Min = price
		}
		if price.GreaterThan(stats.Max) {
			stats.Max = price
		}
		sum = sum.Add(price)
	}
	stats.Mean = sum.Div(decimal.NewFromInt(stats.Count))
	return stats, true, nil
}

var (
	_ storage.ProductStore     = (*fakeStore)(nil)
	_ storage.ObservationStore = (*fakeStore)(nil)
)

// fakeFetcher serves canned pages keyed by URL.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fails map[string]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]string), fails: make(map[string]error)}
}

func (f *fakeFetcher) setPage(url, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = html
	delete(f.fails, url)
}

func (f *fakeFetcher) setFailure(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails[url] = err
	delete(f.pages, url)
}

func (f *fakeFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fails[url]; ok {
		return "", err
	}
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "", &fetch.Error{URL: url, StatusCode: 404}
}

var _ fetch.PageFetcher = (*fakeFetcher)(nil)

// fakeNotifier records delivered notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeNotifier) delivered() []alerting.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]alerting.Notification(nil), f.notes...)
}

var _ alerting.Notifier = (*fakeNotifier)(nil)

func newTestService(t *testing.T, store *fakeStore, fetcher fetch.PageFetcher, notifier alerting.Notifier) *Service {
	t.Helper()
	extractor, err := extract.New([]string{".price", ".current-price"})
	if err != nil {
		t.Fatalf("extract.New: %v", err)
	}
	return New(store, store, fetcher, extractor, notifier, 2, zerolog.Nop())
}
