package service

import (
	"errors"

	"github.com/rs/zerolog"

	"price-tracker/internal/alerting"
	"price-tracker/internal/extract"
	"price-tracker/internal/fetch"
	"price-tracker/internal/storage"
)

var (
	// ErrInvalidTarget rejects a negative target price at registration.
	ErrInvalidTarget = errors.New("service: target price must not be negative")
	// ErrInvalidURL rejects a malformed or non-HTTP product URL.
	ErrInvalidURL = errors.New("service: product url is not well-formed")
)

// Service owns product lifecycle and drives the monitor pipeline: resolve
// product, fetch page, extract price, append observation, evaluate alert.
type Service struct {
	products     storage.ProductStore
	observations storage.ObservationStore
	fetcher      fetch.PageFetcher
	extractor    *extract.Extractor
	notifier     alerting.Notifier
	workers      int
	logger       zerolog.Logger
}

// New constructs the tracking service. notifier may be nil to disable
// delivery; alert evaluation still runs.
func New(products storage.ProductStore, observations storage.ObservationStore, fetcher fetch.PageFetcher, extractor *extract.Extractor, notifier alerting.Notifier, workers int, logger zerolog.Logger) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		products:     products,
		observations: observations,
		fetcher:      fetcher,
		extractor:    extractor,
		notifier:     notifier,
		workers:      workers,
		logger:       logger.With().Str("component", "service").Logger(),
	}
}
