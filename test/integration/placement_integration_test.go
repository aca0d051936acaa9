package integration

import (
	"context"
	"strings"
	"sync"
	"testing"

	"storefront/internal/cache"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(testDB *TestDB, m *metrics.Metrics) service.OrderService {
	logger := zerolog.Nop()
	return service.NewOrderService(
		repository.NewOrderRepository(testDB.Pool, logger),
		repository.NewProductRepository(testDB.Pool, logger),
		cache.NopCache{},
		events.NopPublisher{},
		m,
		logger,
	)
}

func TestPlacement_ConcurrentOrdersNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedProducts(t, testDB.Pool)
	user := SeedUser(t, testDB.Pool, "shopper", false)

	m := metrics.New()
	svc := newOrderService(testDB, m)

	// P001 starts with 5 units; 12 buyers each want one.
	const buyers = 12

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.PlaceOrder(context.Background(), user, placeOrderRequest(
				model.CartItem{ProductID: "P001", Quantity: 1, Price: decimal.NewFromInt(10)},
			))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, model.ErrInsufficientStock):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, buyers-5, rejected)
	assert.Equal(t, 0, StockOf(t, testDB.Pool, "P001"))
	assert.Equal(t, 5, CountRows(t, testDB.Pool, "orders"))
	assert.Equal(t, 5, CountRows(t, testDB.Pool, "order_items"))

	expected := `
# HELP orders_placed_total Orders committed successfully.
# TYPE orders_placed_total counter
orders_placed_total 5
# HELP order_placement_failures_total Order placements rejected or aborted, by reason.
# TYPE order_placement_failures_total counter
order_placement_failures_total{reason="insufficient_stock"} 7
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"orders_placed_total", "order_placement_failures_total"))
}

func TestPlacement_FailedLineRollsBackEarlierLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedProducts(t, testDB.Pool)
	user := SeedUser(t, testDB.Pool, "shopper", false)
	svc := newOrderService(testDB, metrics.New())

	tests := []struct {
		name     string
		items    []model.CartItem
		expected error
	}{
		{
			name: "out of stock after a valid line",
			items: []model.CartItem{
				{ProductID: "P004", Quantity: 10},
				{ProductID: "P003", Quantity: 1},
			},
			expected: model.ErrInsufficientStock,
		},
		{
			name: "repeated line exceeding stock in total",
			items: []model.CartItem{
				{ProductID: "P002", Quantity: 2},
				{ProductID: "P002", Quantity: 2},
			},
			expected: model.ErrInsufficientStock,
		},
		{
			name: "missing product after a valid line",
			items: []model.CartItem{
				{ProductID: "P004", Quantity: 1},
				{ProductID: "NOPE", Quantity: 1},
			},
			expected: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), user, placeOrderRequest(tt.items...))

			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrTransactionAborted)
			assert.ErrorIs(t, err, tt.expected)

			assert.Equal(t, 100, StockOf(t, testDB.Pool, "P004"))
			assert.Equal(t, 3, StockOf(t, testDB.Pool, "P002"))
			assert.Equal(t, 0, StockOf(t, testDB.Pool, "P003"))
			assert.Zero(t, CountRows(t, testDB.Pool, "orders"))
		})
	}
}

func TestPlacement_SameCartTwice(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedProducts(t, testDB.Pool)
	user := SeedUser(t, testDB.Pool, "shopper", false)
	svc := newOrderService(testDB, metrics.New())

	req := placeOrderRequest(model.CartItem{ProductID: "P002", Quantity: 1, Price: decimal.NewFromInt(20)})

	first, err := svc.PlaceOrder(context.Background(), user, req)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), user, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, StockOf(t, testDB.Pool, "P002"))

	mine, err := svc.ListMine(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestPlacement_OppositeCartOrdersDoNotDeadlock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedProducts(t, testDB.Pool)
	_, err := testDB.Pool.Exec(context.Background(), "UPDATE products SET count_in_stock = 100 WHERE id = 'P002'")
	require.NoError(t, err)
	user := SeedUser(t, testDB.Pool, "shopper", false)
	svc := newOrderService(testDB, metrics.New())

	forward := placeOrderRequest(
		model.CartItem{ProductID: "P002", Quantity: 1, Price: decimal.NewFromInt(20)},
		model.CartItem{ProductID: "P004", Quantity: 1, Price: decimal.NewFromInt(40)},
	)
	backward := placeOrderRequest(
		model.CartItem{ProductID: "P004", Quantity: 1, Price: decimal.NewFromInt(40)},
		model.CartItem{ProductID: "P002", Quantity: 1, Price: decimal.NewFromInt(20)},
	)

	const pairs = 20

	var wg sync.WaitGroup
	errs := make(chan error, 2*pairs)
	for i := 0; i < pairs; i++ {
		for _, req := range []*model.PlaceOrderRequest{forward, backward} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.PlaceOrder(context.Background(), user, req)
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 100-2*pairs, StockOf(t, testDB.Pool, "P002"))
	assert.Equal(t, 100-2*pairs, StockOf(t, testDB.Pool, "P004"))
	assert.Equal(t, 2*pairs, CountRows(t, testDB.Pool, "orders"))
}
