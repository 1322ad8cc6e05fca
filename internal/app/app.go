package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"price-tracker/internal/alerting"
	"price-tracker/internal/config"
	"price-tracker/internal/extract"
	"price-tracker/internal/fetch"
	"price-tracker/internal/scheduler"
	"price-tracker/internal/service"
	"price-tracker/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, errors.New("database.dsn is not configured")
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if a.Config.Database.AutoMigrate {
		if err := storage.Migrate(pool, a.Logger); err != nil {
			store.Close()
			return nil, nil, err
		}
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newService(store *storage.Store) (*service.Service, error) {
	extractor, err := extract.New(a.Config.Extractor.FallbackSelectors)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewHTTP(fetch.Options{
		Timeout:   a.Config.HTTP.RequestTimeout,
		UserAgent: a.Config.HTTP.UserAgent,
	}, a.Logger)

	return service.New(store, store, fetcher, extractor, a.newNotifier(), a.Config.Monitor.Workers, a.Logger), nil
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	if a.Config.Alerting.Webhook.Enabled {
		cfg := a.Config.Alerting.Webhook
		return alerting.NewWebhookNotifier(cfg.URL, cfg.Timeout, a.Logger)
	}
	return alerting.NewLogNotifier(a.Logger)
}

// Run executes the long-running monitoring service: a scheduler-driven batch
// monitor over all registered products.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := a.newService(store)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToStart,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Msg("starting monitoring service")
	err = sched.Run(ctx, func(ctx context.Context, startedAt time.Time) error {
		outcomes, err := svc.MonitorAll(ctx)
		if err != nil {
			return err
		}
		a.logCycleSummary(startedAt, outcomes)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

func (a *App) logCycleSummary(startedAt time.Time, outcomes []service.BatchOutcome) {
	succeeded, failed, alerts := 0, 0, 0
	for _, outcome := range outcomes {
		switch {
		case outcome.Err != nil:
			failed++
			a.Logger.Warn().Err(outcome.Err).Int64("product_id", outcome.ProductID).Msg("product cycle failed")
		case outcome.Result.Alert.Fires:
			succeeded++
			alerts++
		default:
			succeeded++
		}
	}
	a.Logger.Info().Time("cycle", startedAt).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Int("alerts", alerts).
		Msg("monitoring cycle complete")
}

// Migrate applies pending database migrations and exits.
func (a *App) Migrate(ctx context.Context) error {
	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	return storage.Migrate(pool, a.Logger)
}

// MonitorOptions configure a one-off monitor command.
type MonitorOptions struct {
	ProductID int64
	Selector  string
	All       bool
}

// ShowOptions configure the history listing.
type ShowOptions struct {
	ProductID int64
	Limit     int
}

// ExportOptions hold parameters for exporting a product's history.
type ExportOptions struct {
	ProductID int64
	CSVPath   string
	PNGPath   string
	MaxPoints int
}
