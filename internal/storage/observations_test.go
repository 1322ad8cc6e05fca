package storage

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testStore *Store

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := Migrate(pool, zerolog.Nop()); err != nil {
		return dbContainer.Terminate, err
	}

	testStore = NewStore(pool)
	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func insertTestProduct(t *testing.T, name string) Product {
	t.Helper()
	product, err := testStore.InsertProduct(context.Background(), name, "https://shop.example/"+name, decimal.RequireFromString("100.00"))
	if err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	return product
}

func TestAppendThenLatest(t *testing.T) {
	ctx := context.Background()
	product := insertTestProduct(t, "append-then-latest")

	first, err := testStore.AppendObservation(ctx, product.ID, decimal.RequireFromString("150.00"), nil)
	if err != nil {
		t.Fatalf("AppendObservation: %v", err)
	}
	if first.ObservedAt.IsZero() {
		t.Fatal("server-side timestamp missing")
	}

	latest, ok, err := testStore.LatestObservation(ctx, product.ID)
	if err != nil {
		t.Fatalf("LatestObservation: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after an append")
	}
	if latest.ID != first.ID {
		t.Fatalf("latest.ID = %d, want just-appended %d", latest.ID, first.ID)
	}
	if !latest.Price.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("latest.Price = %s, want 150.00", latest.Price.String())
	}

	second, err := testStore.AppendObservation(ctx, product.ID, decimal.RequireFromString("140.00"), nil)
	if err != nil {
		t.Fatalf("second AppendObservation: %v", err)
	}

	latest, ok, err = testStore.LatestObservation(ctx, product.ID)
	if err != nil {
		t.Fatalf("LatestObservation: %v", err)
	}
	if !ok || latest.ID != second.ID {
		t.Fatalf("latest.ID = %d, want most recent append %d", latest.ID, second.ID)
	}
}

func TestLatestObservationEmptyHistory(t *testing.T) {
	product := insertTestProduct(t, "no-history-latest")

	_, ok, err := testStore.LatestObservation(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("LatestObservation: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a product with no observations")
	}
}

func TestStatsEmptyHistory(t *testing.T) {
	product := insertTestProduct(t, "no-history-stats")

	_, ok, err := testStore.Stats(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for an empty history")
	}
}

func TestStatsAggregates(t *testing.T) {
	ctx := context.Background()
	product := insertTestProduct(t, "stats-aggregates")

	for _, price := range []string{"90.00", "110.00", "100.00"} {
		if _, err := testStore.AppendObservation(ctx, product.ID, decimal.RequireFromString(price), nil); err != nil {
			t.Fatalf("AppendObservation(%s): %v", price, err)
		}
	}

	stats, ok, err := testStore.Stats(ctx, product.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true with observations present")
	}
	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if !stats.Min.Equal(decimal.RequireFromString("90.00")) {
		t.Errorf("Min = %s, want 90.00", stats.Min.String())
	}
	if !stats.Max.Equal(decimal.RequireFromString("110.00")) {
		t.Errorf("Max = %s, want 110.00", stats.Max.String())
	}
	if !stats.Mean.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Mean = %s, want 100.00", stats.Mean.String())
	}
}

func TestAppendObservationUnknownProduct(t *testing.T) {
	_, err := testStore.AppendObservation(context.Background(), 999999, decimal.RequireFromString("10.00"), nil)
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct, got %v", err)
	}
}

func TestListHistoryLimitAndFull(t *testing.T) {
	ctx := context.Background()
	product := insertTestProduct(t, "history-limits")

	for i := 0; i < 5; i++ {
		price := decimal.NewFromInt(int64(100 + i))
		if _, err := testStore.AppendObservation(ctx, product.ID, price, nil); err != nil {
			t.Fatalf("AppendObservation: %v", err)
		}
	}

	limited, err := testStore.ListHistory(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("ListHistory(limit=2): %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited history = %d rows, want 2", len(limited))
	}
	if !limited[0].Price.Equal(decimal.NewFromInt(104)) {
		t.Errorf("newest price = %s, want 104", limited[0].Price.String())
	}

	full, err := testStore.ListHistory(ctx, product.ID, 0)
	if err != nil {
		t.Fatalf("ListHistory(limit=0): %v", err)
	}
	if len(full) != 5 {
		t.Fatalf("full history = %d rows, want 5", len(full))
	}
	for i := 1; i < len(full); i++ {
		if full[i].ID > full[i-1].ID {
			t.Fatal("history should be ordered newest first")
		}
	}
}

func TestDeleteProductCascades(t *testing.T) {
	ctx := context.Background()
	product := insertTestProduct(t, "cascade-delete")

	if _, err := testStore.AppendObservation(ctx, product.ID, decimal.RequireFromString("42.00"), nil); err != nil {
		t.Fatalf("AppendObservation: %v", err)
	}

	if err := testStore.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}

	history, err := testStore.ListHistory(ctx, product.ID, 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected cascade to remove observations, got %d rows", len(history))
	}
}
