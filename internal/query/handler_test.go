package query

import (
	"context"
	"testing"

	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/example/retail-backoffice/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler *Handler
	catalog *catalog.Service
	ledger  *inventory.Ledger
	orders  *order.Service
}

func newTestQueryHandler(t *testing.T, products ...catalog.Product) *testEnv {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.NewService(ctx, mocks.NewMockRepository(products...), nil)
	require.NoError(t, err)
	ledger, err := inventory.NewLedger(ctx, cat, mocks.NewMockRepository[inventory.Record]())
	require.NoError(t, err)
	orders, err := order.NewService(ctx, mocks.NewMockRepository[order.Order](), ledger)
	require.NoError(t, err)

	return &testEnv{
		handler: NewHandler(cat, ledger, orders),
		catalog: cat,
		ledger:  ledger,
		orders:  orders,
	}
}

func product(id, name string) catalog.Product {
	return catalog.Product{ID: id, Name: name, Status: catalog.StatusActive, Price: decimal.NewFromInt(10)}
}

// ============================================
// Inventory Query Tests
// ============================================

func TestHandler_ListInventory_IncludesProductsWithoutRecord(t *testing.T) {
	env := newTestQueryHandler(t, product("p1", "Cap"), product("p2", "Scarf"))
	ctx := context.Background()
	_, err := env.ledger.StockIn(ctx, "p1", 25)
	require.NoError(t, err)

	views, err := env.handler.ListInventory(ctx)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 25, views[0].Quantity)
	assert.Equal(t, string(inventory.LevelNormal), views[0].Level)
	assert.True(t, views[0].HasRecord)
	assert.NotNil(t, views[0].LastUpdated)
	assert.False(t, views[1].HasRecord)
	assert.Equal(t, string(inventory.LevelOutOfStock), views[1].Level)
	assert.Equal(t, inventory.DefaultMinStock, views[1].MinStock)
}

func TestHandler_GetInventory(t *testing.T) {
	env := newTestQueryHandler(t, product("p1", "Cap"))
	ctx := context.Background()
	_, err := env.ledger.StockIn(ctx, "p1", 4)
	require.NoError(t, err)

	view, err := env.handler.GetInventory(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, string(inventory.LevelLowStock), view.Level)

	_, err = env.handler.GetInventory(ctx, "ghost")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestHandler_InventoryAlerts(t *testing.T) {
	env := newTestQueryHandler(t, product("p1", "Cap"), product("p2", "Scarf"), product("p3", "Coat"), product("p4", "Gone"))
	ctx := context.Background()
	_, err := env.ledger.Sync(ctx)
	require.NoError(t, err)
	_, err = env.ledger.StockIn(ctx, "p2", 10)
	require.NoError(t, err)
	_, err = env.ledger.StockIn(ctx, "p3", 11)
	require.NoError(t, err)
	require.NoError(t, env.catalog.Delete(ctx, "p4"))

	alerts, err := env.handler.InventoryAlerts(ctx)

	require.NoError(t, err)
	require.Len(t, alerts.OutOfStock, 1)
	assert.Equal(t, "p1", alerts.OutOfStock[0].ProductID)
	require.Len(t, alerts.LowStock, 1)
	assert.Equal(t, "Scarf", alerts.LowStock[0].Name)
	assert.Equal(t, []string{"p4"}, alerts.Stale)
}

// ============================================
// Order Query Tests
// ============================================

func placeOrder(t *testing.T, env *testEnv, id string, status order.Status, items ...order.LineItem) {
	t.Helper()
	ctx := context.Background()
	_, err := env.orders.Create(ctx, order.NewOrder{ID: id, Items: items})
	require.NoError(t, err)

	path := map[order.Status][]order.Status{
		order.StatusPending:   {},
		order.StatusCompleted: {order.StatusProcessing, order.StatusShipping, order.StatusCompleted},
		order.StatusCancelled: {order.StatusCancelled},
	}[status]
	for _, s := range path {
		_, err := env.orders.Transition(ctx, id, s)
		require.NoError(t, err)
	}
}

func line(productID, name string, qty int, price int64) order.LineItem {
	return order.LineItem{ProductID: productID, ProductName: name, Quantity: qty, Price: decimal.NewFromInt(price)}
}

func TestHandler_ListOrders_FilterByStatus(t *testing.T) {
	env := newTestQueryHandler(t, product("p1", "Cap"))
	ctx := context.Background()
	placeOrder(t, env, "ORD-1", order.StatusPending, line("p1", "Cap", 1, 10))
	placeOrder(t, env, "ORD-2", order.StatusCompleted, line("p1", "Cap", 1, 10))

	all, err := env.handler.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := env.handler.ListOrders(ctx, "COMPLETED")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "ORD-2", completed[0].ID)

	_, err = env.handler.ListOrders(ctx, "lost")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestHandler_GetOrder_NotFound(t *testing.T) {
	env := newTestQueryHandler(t)

	_, err := env.handler.GetOrder(context.Background(), "ORD-404")

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestHandler_OrderStats(t *testing.T) {
	env := newTestQueryHandler(t, product("p1", "Cap"), product("p2", "Scarf"))
	placeOrder(t, env, "ORD-1", order.StatusPending, line("p1", "Cap", 1, 10))
	placeOrder(t, env, "ORD-2", order.StatusCompleted, line("p1", "Cap", 2, 10), line("p2", "Scarf", 1, 50))
	placeOrder(t, env, "ORD-3", order.StatusCompleted, line("p1", "Cap", 1, 10))
	placeOrder(t, env, "ORD-4", order.StatusCancelled, line("p2", "Scarf", 3, 50))

	stats, err := env.handler.OrderStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.ByStatus["completed"].Count)
	assert.Equal(t, 0, stats.ByStatus["shipping"].Count)
	assert.True(t, decimal.NewFromInt(80).Equal(stats.Revenue))
	assert.True(t, decimal.NewFromInt(150).Equal(stats.CancelledAmount))
	require.Len(t, stats.RevenueByProduct, 2)
	assert.Equal(t, "p2", stats.RevenueByProduct[0].ProductID)
	assert.Equal(t, 3, stats.RevenueByProduct[1].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(stats.RevenueByProduct[1].Revenue))
}
