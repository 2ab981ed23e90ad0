package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/example/retail-backoffice/internal/command"

// Handler couples the catalog, the inventory ledger and the order lifecycle.
// Every command runs under the configured timeout and its own span.
type Handler struct {
	catalog *catalog.Service
	ledger  *inventory.Ledger
	orders  *order.Service
	timeout time.Duration
	tracer  trace.Tracer
	logger  *zap.Logger
}

func NewHandler(
	catalogSvc *catalog.Service,
	ledger *inventory.Ledger,
	orderSvc *order.Service,
	timeout time.Duration,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog: catalogSvc,
		ledger:  ledger,
		orders:  orderSvc,
		timeout: timeout,
		tracer:  otel.Tracer(tracerName),
		logger:  logger.Named("command"),
	}
}

func (h *Handler) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := h.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	cancel := func() {}
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
	}
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		cancel()
		span.End()
	}
}

// CreateProduct adds a product and its inventory record, optionally stocking it
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (p *catalog.Product, err error) {
	ctx, end := h.begin(ctx, "CreateProduct")
	defer func() { end(err) }()

	if cmd.InitialStock < 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	p, err = h.catalog.Create(ctx, catalog.NewProduct{
		ID:          cmd.ID,
		Name:        cmd.Name,
		Description: cmd.Description,
		CategoryID:  cmd.CategoryID,
		Price:       cmd.Price,
		Status:      cmd.Status,
	})
	if err != nil {
		return nil, err
	}

	// StockIn creates the record and its quantity in one commit, so a failure
	// never leaves an empty record behind
	if cmd.InitialStock > 0 {
		_, err = h.ledger.StockIn(ctx, p.ID, cmd.InitialStock)
	} else {
		_, err = h.ledger.GetOrCreate(ctx, p.ID)
	}
	if err != nil {
		h.rollbackProduct(ctx, p.ID)
		return nil, err
	}
	return p, nil
}

// rollbackProduct undoes a product creation whose inventory record could not be stored
func (h *Handler) rollbackProduct(ctx context.Context, productID string) {
	if err := h.catalog.Delete(ctx, productID); err != nil {
		h.logger.Warn("failed to roll back product, next sync will create its record",
			zap.String("product_id", productID), zap.Error(err))
	}
}

// UpdateProduct edits a product and refreshes the name on its inventory record
func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) (p *catalog.Product, err error) {
	ctx, end := h.begin(ctx, "UpdateProduct", attribute.String("product.id", cmd.ProductID))
	defer func() { end(err) }()

	p, err = h.catalog.Update(ctx, cmd.ProductID, catalog.ProductUpdate{
		Name:        cmd.Name,
		Description: cmd.Description,
		CategoryID:  cmd.CategoryID,
		Price:       cmd.Price,
		Status:      cmd.Status,
	})
	if err != nil {
		return nil, err
	}

	if _, err := h.ledger.Sync(ctx); err != nil {
		h.logger.Warn("inventory not refreshed after product update",
			zap.String("product_id", p.ID), zap.Error(err))
	}
	return p, nil
}

// DeleteProduct removes a product and cascades to its inventory record. A failed
// cascade leaves a stale record, which reads ignore and the next sync removes.
func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) (err error) {
	ctx, end := h.begin(ctx, "DeleteProduct", attribute.String("product.id", cmd.ProductID))
	defer func() { end(err) }()

	if err := h.catalog.Delete(ctx, cmd.ProductID); err != nil {
		return err
	}
	if _, err := h.ledger.DeleteForProduct(ctx, cmd.ProductID); err != nil {
		h.logger.Warn("inventory record left stale after product delete",
			zap.String("product_id", cmd.ProductID), zap.Error(err))
	}
	return nil
}

func (h *Handler) AdjustStock(ctx context.Context, cmd AdjustStock) (res *inventory.AdjustResult, err error) {
	ctx, end := h.begin(ctx, "AdjustStock",
		attribute.String("product.id", cmd.ProductID),
		attribute.String("inventory.mode", cmd.Mode),
		attribute.Int("inventory.quantity", cmd.Quantity),
	)
	defer func() { end(err) }()

	return h.ledger.Adjust(ctx, cmd.ProductID, cmd.Quantity, inventory.Mode(strings.ToLower(cmd.Mode)))
}

func (h *Handler) StockIn(ctx context.Context, cmd StockIn) (res *inventory.AdjustResult, err error) {
	ctx, end := h.begin(ctx, "StockIn",
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("inventory.quantity", cmd.Quantity),
	)
	defer func() { end(err) }()

	return h.ledger.StockIn(ctx, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) StockOut(ctx context.Context, cmd StockOut) (res *inventory.AdjustResult, err error) {
	ctx, end := h.begin(ctx, "StockOut",
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("inventory.quantity", cmd.Quantity),
	)
	defer func() { end(err) }()

	return h.ledger.StockOut(ctx, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) SetThresholds(ctx context.Context, cmd SetThresholds) (rec *inventory.Record, err error) {
	ctx, end := h.begin(ctx, "SetThresholds", attribute.String("product.id", cmd.ProductID))
	defer func() { end(err) }()

	return h.ledger.SetThresholds(ctx, cmd.ProductID, cmd.MinStock, cmd.MaxStock)
}

// SyncInventory reconciles the ledger with the catalog. Safe to retry.
func (h *Handler) SyncInventory(ctx context.Context) (report *inventory.ReconcileReport, err error) {
	ctx, end := h.begin(ctx, "SyncInventory")
	defer func() { end(err) }()

	return h.ledger.Sync(ctx)
}

// CreateOrder places an order. Line items without a name get the catalog's current
// name; the snapshot is fixed from then on. Stock is not touched.
func (h *Handler) CreateOrder(ctx context.Context, cmd CreateOrder) (o *order.Order, err error) {
	ctx, end := h.begin(ctx, "CreateOrder", attribute.Int("order.items", len(cmd.Items)))
	defer func() { end(err) }()

	items := make([]order.LineItem, len(cmd.Items))
	for i, item := range cmd.Items {
		if item.ProductName == "" && item.ProductID != "" {
			p, err := h.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			item.ProductName = p.Name
		}
		items[i] = item
	}

	return h.orders.Create(ctx, order.NewOrder{
		ID:              cmd.ID,
		CustomerID:      cmd.CustomerID,
		CustomerName:    cmd.CustomerName,
		CustomerEmail:   cmd.CustomerEmail,
		Items:           items,
		PaymentMethod:   cmd.PaymentMethod,
		PaymentStatus:   cmd.PaymentStatus,
		ShippingAddress: cmd.ShippingAddress,
	})
}

// UpdateOrderStatus transitions an order; cancelling restores its stock
func (h *Handler) UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatus) (res *order.TransitionResult, err error) {
	ctx, end := h.begin(ctx, "UpdateOrderStatus",
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.status", cmd.Status),
	)
	defer func() { end(err) }()

	status, err := order.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	res, err = h.orders.Transition(ctx, cmd.OrderID, status)
	if err != nil {
		return nil, err
	}
	if len(res.Warnings) > 0 {
		trace.SpanFromContext(ctx).AddEvent("stock restoration incomplete",
			trace.WithAttributes(attribute.StringSlice("warnings", res.Warnings)))
	}
	return res, nil
}

// DeleteOrder removes an order without restoring stock
func (h *Handler) DeleteOrder(ctx context.Context, cmd DeleteOrder) (err error) {
	ctx, end := h.begin(ctx, "DeleteOrder", attribute.String("order.id", cmd.OrderID))
	defer func() { end(err) }()

	deleted, err := h.orders.Delete(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", order.ErrOrderNotFound, cmd.OrderID)
	}
	return nil
}

func (h *Handler) SendOrderNotification(ctx context.Context, cmd SendOrderNotification) (err error) {
	ctx, end := h.begin(ctx, "SendOrderNotification", attribute.String("order.id", cmd.OrderID))
	defer func() { end(err) }()

	channel, err := order.ParseChannel(cmd.Channel)
	if err != nil {
		return err
	}
	return h.orders.SendNotification(ctx, cmd.OrderID, channel)
}

// IsNotFound reports whether err means a referenced product, record or order is absent
func IsNotFound(err error) bool {
	return errors.Is(err, catalog.ErrProductNotFound) ||
		errors.Is(err, inventory.ErrNotFound) ||
		errors.Is(err, order.ErrOrderNotFound)
}
