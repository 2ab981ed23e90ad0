package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog is the read-only view of the product catalog the ledger depends on
type Catalog interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// Ledger owns the productID -> Record mapping and every quantity mutation.
//
// Mutations are applied to a copy of the record set, saved, and only then swapped in,
// so a failed save never leaves a partially applied change visible to later reads.
type Ledger struct {
	mu        sync.Mutex
	catalog   Catalog
	repo      store.Repository[Record]
	records   []Record
	publisher store.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Ledger)

func WithPublisher(p store.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger loads the stored records. The catalog must already be initialized.
func NewLedger(ctx context.Context, cat Catalog, repo store.Repository[Record], opts ...Option) (*Ledger, error) {
	l := &Ledger{
		catalog:   cat,
		repo:      repo,
		publisher: store.NopPublisher{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("inventory")

	records, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	l.records = dedupe(records, l.logger)
	return l, nil
}

// GetOrCreate returns the product's record, creating an empty one on first use.
// Returns ErrNotFound when the product is not in the catalog.
func (l *Ledger) GetOrCreate(ctx context.Context, productID string) (*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.liveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if idx := l.indexOf(productID); idx >= 0 {
		rec := l.records[idx]
		return &rec, nil
	}

	rec := newRecord(uuid.New().String(), product.ID, product.Name, l.now())
	next := append(l.snapshot(), rec)
	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}

	l.logger.Info("inventory record created", zap.String("product_id", productID))
	l.publish(ctx, productID, EventRecordCreated, RecordCreated{
		ProductID:   rec.ProductID,
		ProductName: rec.ProductName,
		CreatedAt:   rec.LastUpdated,
	})
	return &rec, nil
}

// Adjust changes a product's quantity.
// set replaces the quantity (delta >= 0), add increases it (delta > 0), subtract
// decreases it (delta > 0) and clamps at zero, reporting the clamp in the result.
func (l *Ledger) Adjust(ctx context.Context, productID string, delta int, mode Mode) (*AdjustResult, error) {
	if err := validateDelta(0, delta, mode); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.liveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	next := l.snapshot()
	idx := l.indexOf(productID)
	created := idx < 0
	if created {
		next = append(next, newRecord(uuid.New().String(), product.ID, product.Name, now))
		idx = len(next) - 1
	}

	rec := next[idx]
	if err := validateDelta(rec.Quantity, delta, mode); err != nil {
		return nil, err
	}
	before := rec.Level()
	quantity, applied, truncated := apply(rec.Quantity, delta, mode)

	result := &AdjustResult{
		Mode:      mode,
		Previous:  rec.Quantity,
		Requested: delta,
		Applied:   applied,
		Truncated: truncated,
	}
	rec.Quantity = quantity
	rec.LastUpdated = now
	next[idx] = rec
	result.Record = rec

	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}

	if truncated {
		l.logger.Warn("subtraction clamped at zero",
			zap.String("product_id", productID),
			zap.Int("requested", delta),
			zap.Int("applied", applied),
		)
	}
	if created {
		l.publish(ctx, productID, EventRecordCreated, RecordCreated{
			ProductID:   rec.ProductID,
			ProductName: rec.ProductName,
			CreatedAt:   now,
		})
	}
	l.publish(ctx, productID, EventAdjusted, Adjusted{
		ProductID:  productID,
		Mode:       mode,
		Previous:   result.Previous,
		Quantity:   rec.Quantity,
		Requested:  delta,
		Applied:    applied,
		Truncated:  truncated,
		AdjustedAt: now,
	})
	// restocking never raises an alert, even when the product stays low
	if after := rec.Level(); after.worseThan(before) {
		l.publish(ctx, productID, EventStockAlertRaised, StockAlertRaised{
			ProductID:   productID,
			ProductName: rec.ProductName,
			Level:       after,
			Quantity:    rec.Quantity,
			MinStock:    rec.MinStock,
			RaisedAt:    now,
		})
	}
	return result, nil
}

// StockIn adds quantity to a product's stock
func (l *Ledger) StockIn(ctx context.Context, productID string, quantity int) (*AdjustResult, error) {
	return l.Adjust(ctx, productID, quantity, ModeAdd)
}

// StockOut removes quantity from a product's stock, never going below zero
func (l *Ledger) StockOut(ctx context.Context, productID string, quantity int) (*AdjustResult, error) {
	return l.Adjust(ctx, productID, quantity, ModeSubtract)
}

// SetThresholds changes the reorder thresholds used by classification
func (l *Ledger) SetThresholds(ctx context.Context, productID string, minStock, maxStock int) (*Record, error) {
	if minStock < 0 || maxStock < minStock {
		return nil, ErrInvalidThreshold
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.liveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	next := l.snapshot()
	idx := l.indexOf(productID)
	if idx < 0 {
		next = append(next, newRecord(uuid.New().String(), product.ID, product.Name, now))
		idx = len(next) - 1
	}
	rec := next[idx]
	rec.MinStock = minStock
	rec.MaxStock = maxStock
	rec.LastUpdated = now
	next[idx] = rec

	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}

	l.publish(ctx, productID, EventThresholdsChanged, ThresholdsChanged{
		ProductID: productID,
		MinStock:  minStock,
		MaxStock:  maxStock,
		ChangedAt: now,
	})
	return &rec, nil
}

// DeleteForProduct removes the product's record. Reports false when there was none.
func (l *Ledger) DeleteForProduct(ctx context.Context, productID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(productID)
	if idx < 0 {
		return false, nil
	}

	next := make([]Record, 0, len(l.records)-1)
	next = append(next, l.records[:idx]...)
	next = append(next, l.records[idx+1:]...)
	if err := l.commit(ctx, next); err != nil {
		return false, err
	}

	l.logger.Info("inventory record deleted", zap.String("product_id", productID))
	l.publish(ctx, productID, EventRecordDeleted, RecordDeleted{
		ProductID: productID,
		DeletedAt: l.now(),
	})
	return true, nil
}

// Get returns the product's record without creating one
func (l *Ledger) Get(ctx context.Context, productID string) (*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(productID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	rec := l.records[idx]
	return &rec, nil
}

// List returns the records whose product is still in the catalog
func (l *Ledger) List(ctx context.Context) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live, err := l.liveIDs(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		if _, ok := live[rec.ProductID]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// liveProduct maps a missing catalog entry to ErrNotFound
func (l *Ledger) liveProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	product, err := l.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, err
	}
	return product, nil
}

func (l *Ledger) liveIDs(ctx context.Context) (map[string]catalog.Product, error) {
	products, err := l.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	live := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		live[p.ID] = p
	}
	return live, nil
}

// commit persists next and makes it the visible state
func (l *Ledger) commit(ctx context.Context, next []Record) error {
	if err := l.repo.Save(ctx, next); err != nil {
		l.logger.Error("failed to save inventory", zap.Error(err))
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	l.records = next
	return nil
}

// publish is best effort: the change is already committed
func (l *Ledger) publish(ctx context.Context, productID, eventType string, data any) {
	event, err := store.NewEvent(productID, AggregateType, eventType, data)
	if err == nil {
		err = l.publisher.Publish(ctx, productID, event)
	}
	if err != nil {
		l.logger.Warn("failed to publish inventory event",
			zap.String("event_type", eventType),
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}

func (l *Ledger) indexOf(productID string) int {
	for i := range l.records {
		if l.records[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *Ledger) snapshot() []Record {
	return append(make([]Record, 0, len(l.records)+1), l.records...)
}

// dedupe keeps the first record per product
func dedupe(records []Record, logger *zap.Logger) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ProductID]; ok {
			logger.Warn("dropping duplicate inventory record", zap.String("product_id", rec.ProductID))
			continue
		}
		seen[rec.ProductID] = struct{}{}
		out = append(out, rec)
	}
	return out
}
