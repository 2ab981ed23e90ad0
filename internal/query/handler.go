package query

import (
	"context"
	"sort"

	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/shopspring/decimal"
)

type ProductReader interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

type InventoryReader interface {
	Get(ctx context.Context, productID string) (*inventory.Record, error)
	List(ctx context.Context) ([]inventory.Record, error)
	Classify(ctx context.Context) (*inventory.Classification, error)
}

type OrderReader interface {
	Get(ctx context.Context, orderID string) (*order.Order, error)
	List(ctx context.Context) ([]order.Order, error)
	ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error)
}

// Handler serves read-only views; it never mutates the ledger or orders
type Handler struct {
	products  ProductReader
	inventory InventoryReader
	orders    OrderReader
}

func NewHandler(products ProductReader, inv InventoryReader, orders OrderReader) *Handler {
	return &Handler{products: products, inventory: inv, orders: orders}
}

// Products
func (h *Handler) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return h.products.ListProducts(ctx)
}

func (h *Handler) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	return h.products.GetProduct(ctx, id)
}

// ListInventory returns every catalog product with its stock. Products without a
// record yet are shown as out of stock with default thresholds.
func (h *Handler) ListInventory(ctx context.Context) ([]ProductStockReadModel, error) {
	products, err := h.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	records, err := h.inventory.List(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]inventory.Record, len(records))
	for _, rec := range records {
		byProduct[rec.ProductID] = rec
	}

	views := make([]ProductStockReadModel, 0, len(products))
	for _, p := range products {
		rec, ok := byProduct[p.ID]
		views = append(views, stockView(p, rec, ok))
	}
	return views, nil
}

// GetInventory returns one product's stock
func (h *Handler) GetInventory(ctx context.Context, productID string) (*ProductStockReadModel, error) {
	p, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	rec, err := h.inventory.Get(ctx, productID)
	view := stockView(*p, inventory.Record{}, false)
	if err == nil {
		view = stockView(*p, *rec, true)
	}
	return &view, nil
}

// InventoryAlerts lists out-of-stock and low-stock products
func (h *Handler) InventoryAlerts(ctx context.Context) (*StockAlertsReadModel, error) {
	c, err := h.inventory.Classify(ctx)
	if err != nil {
		return nil, err
	}
	products, err := h.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	alerts := &StockAlertsReadModel{
		OutOfStock: make([]ProductStockReadModel, 0, len(c.OutOfStock)),
		LowStock:   make([]ProductStockReadModel, 0, len(c.LowStock)),
		Stale:      append([]string{}, c.Stale...),
	}
	for _, rec := range c.OutOfStock {
		alerts.OutOfStock = append(alerts.OutOfStock, stockView(byID[rec.ProductID], rec, true))
	}
	for _, rec := range c.LowStock {
		alerts.LowStock = append(alerts.LowStock, stockView(byID[rec.ProductID], rec, true))
	}
	return alerts, nil
}

func stockView(p catalog.Product, rec inventory.Record, hasRecord bool) ProductStockReadModel {
	view := ProductStockReadModel{
		ProductID:  p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Price:      p.Price,
		Status:     string(p.Status),
		MinStock:   inventory.DefaultMinStock,
		MaxStock:   inventory.DefaultMaxStock,
		Level:      string(inventory.LevelOutOfStock),
		HasRecord:  hasRecord,
	}
	if view.ProductID == "" {
		view.ProductID = rec.ProductID
		view.Name = rec.ProductName
	}
	if hasRecord {
		updated := rec.LastUpdated
		view.Quantity = rec.Quantity
		view.MinStock = rec.MinStock
		view.MaxStock = rec.MaxStock
		view.Level = string(rec.Level())
		view.LastUpdated = &updated
	}
	return view
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return h.orders.Get(ctx, id)
}

// ListOrders returns all orders, or those in status when it is not empty
func (h *Handler) ListOrders(ctx context.Context, status string) ([]order.Order, error) {
	if status == "" {
		return h.orders.List(ctx)
	}
	s, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return h.orders.ListByStatus(ctx, s)
}

// OrderStats summarizes orders by status
func (h *Handler) OrderStats(ctx context.Context) (*OrderStatsReadModel, error) {
	orders, err := h.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &OrderStatsReadModel{
		TotalOrders:      len(orders),
		ByStatus:         make(map[string]StatusTotalReadModel),
		Revenue:          decimal.Zero,
		CancelledAmount:  decimal.Zero,
		RevenueByProduct: []ProductRevenueReadModel{},
	}
	for _, s := range []order.Status{
		order.StatusPending,
		order.StatusProcessing,
		order.StatusShipping,
		order.StatusCompleted,
		order.StatusCancelled,
	} {
		stats.ByStatus[string(s)] = StatusTotalReadModel{Amount: decimal.Zero}
	}

	byProduct := make(map[string]*ProductRevenueReadModel)
	for _, o := range orders {
		t := stats.ByStatus[string(o.Status)]
		t.Count++
		t.Amount = t.Amount.Add(o.TotalAmount)
		stats.ByStatus[string(o.Status)] = t

		switch o.Status {
		case order.StatusCancelled:
			stats.CancelledAmount = stats.CancelledAmount.Add(o.TotalAmount)
		case order.StatusCompleted:
			stats.Revenue = stats.Revenue.Add(o.TotalAmount)
			for _, item := range o.Items {
				r, ok := byProduct[item.ProductID]
				if !ok {
					r = &ProductRevenueReadModel{
						ProductID:   item.ProductID,
						ProductName: item.ProductName,
						Revenue:     decimal.Zero,
					}
					byProduct[item.ProductID] = r
				}
				r.Quantity += item.Quantity
				r.Revenue = r.Revenue.Add(item.Subtotal())
			}
		}
	}

	for _, r := range byProduct {
		stats.RevenueByProduct = append(stats.RevenueByProduct, *r)
	}
	sort.Slice(stats.RevenueByProduct, func(i, j int) bool {
		a, b := stats.RevenueByProduct[i], stats.RevenueByProduct[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.ProductID < b.ProductID
	})
	return stats, nil
}
