package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StockRestorer returns stock to inventory when an order is cancelled
type StockRestorer interface {
	StockIn(ctx context.Context, productID string, quantity int) (*inventory.AdjustResult, error)
}

// Notifier delivers customer notifications about an order
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, n Notification) error { return nil }

// Service owns the order list and the status state machine.
// Creating an order never touches inventory; only cancellation issues the
// compensating stock-in for each line item.
type Service struct {
	mu        sync.RWMutex
	repo      store.Repository[Order]
	orders    []Order
	stock     StockRestorer
	notifier  Notifier
	publisher store.Publisher
	logger    *zap.Logger
	strict    bool
	now       func() time.Time
}

type Option func(*Service)

// WithStrictTransitions rejects status changes outside the state graph.
// When disabled they are accepted and flagged.
func WithStrictTransitions(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithPublisher(p store.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(ctx context.Context, repo store.Repository[Order], stock StockRestorer, opts ...Option) (*Service, error) {
	s := &Service{
		repo:      repo,
		stock:     stock,
		notifier:  nopNotifier{},
		publisher: store.NopPublisher{},
		logger:    zap.NewNop(),
		strict:    true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("order")

	orders, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	s.orders = orders
	return s, nil
}

// Create stores a new pending order with a snapshot of its line items
func (s *Service) Create(ctx context.Context, no NewOrder) (*Order, error) {
	if err := validateItems(no.Items); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(no.ID)
	if id == "" {
		id = "ORD-" + uuid.New().String()
	} else if s.indexOf(id) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderExists, id)
	}

	paymentStatus := no.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	now := s.now()
	items := append([]LineItem(nil), no.Items...)
	o := Order{
		ID:              id,
		CustomerID:      no.CustomerID,
		CustomerName:    no.CustomerName,
		CustomerEmail:   no.CustomerEmail,
		Items:           items,
		TotalAmount:     totalOf(items),
		Status:          StatusPending,
		PaymentMethod:   no.PaymentMethod,
		PaymentStatus:   paymentStatus,
		ShippingAddress: no.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	next := append(s.snapshot(), o)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("customer_id", o.CustomerID),
		zap.String("total", o.TotalAmount.String()),
	)
	s.publish(ctx, o.ID, EventOrderCreated, OrderCreated{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         o.Items,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     now,
	})

	created := o.clone()
	return &created, nil
}

// Transition moves an order to a new status.
//
// Cancelling an order that was not already cancelled returns every line item's
// quantity to inventory, one StockIn per item in line-item order. The status change
// is persisted first; restoration is best effort and failures are reported in
// TransitionResult.Warnings rather than as an error.
func (s *Service) Transition(ctx context.Context, orderID string, target Status) (*TransitionResult, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	current := s.orders[idx]
	outOfGraph := !current.CanTransitionTo(target)
	if outOfGraph {
		if s.strict {
			return nil, current.transitionError(target)
		}
		s.logger.Warn("order status change outside the state graph",
			zap.String("order_id", orderID),
			zap.String("from", string(current.Status)),
			zap.String("to", string(target)),
		)
	}

	now := s.now()
	next := s.snapshot()
	updated := current.clone()
	updated.Status = target
	updated.UpdatedAt = now
	next[idx] = updated

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	result := &TransitionResult{
		Order:      updated.clone(),
		Previous:   current.Status,
		OutOfGraph: outOfGraph,
		Restored:   []LineItem{},
	}

	var restoreErr error
	if target == StatusCancelled && current.Status != StatusCancelled {
		for _, item := range updated.Items {
			if _, err := s.stock.StockIn(ctx, item.ProductID, item.Quantity); err != nil {
				restoreErr = multierr.Append(restoreErr,
					fmt.Errorf("restore %d of product %s: %w", item.Quantity, item.ProductID, err))
				continue
			}
			result.Restored = append(result.Restored, item)
		}
	}
	for _, err := range multierr.Errors(restoreErr) {
		result.Warnings = append(result.Warnings, err.Error())
	}
	if restoreErr != nil {
		s.logger.Warn("stock restoration incomplete",
			zap.String("order_id", orderID),
			zap.Int("failed_items", len(result.Warnings)),
			zap.Error(restoreErr),
		)
	}

	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(target)),
	)
	s.publish(ctx, orderID, EventOrderStatusChanged, OrderStatusChanged{
		OrderID:    orderID,
		From:       current.Status,
		To:         target,
		OutOfGraph: outOfGraph,
		Restored:   len(result.Restored),
		Failed:     len(result.Warnings),
		ChangedAt:  now,
	})
	return result, nil
}

// Delete removes an order without any compensating inventory action.
// Reports false when the order does not exist.
func (s *Service) Delete(ctx context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return false, nil
	}

	removed := s.orders[idx]
	next := make([]Order, 0, len(s.orders)-1)
	next = append(next, s.orders[:idx]...)
	next = append(next, s.orders[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}

	s.logger.Info("order deleted", zap.String("order_id", orderID))
	s.publish(ctx, orderID, EventOrderDeleted, OrderDeleted{
		OrderID:   orderID,
		Status:    removed.Status,
		DeletedAt: s.now(),
	})
	return true, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	o := s.orders[idx].clone()
	return &o, nil
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]Order, len(s.orders))
	for i, o := range s.orders {
		orders[i] = o.clone()
	}
	return orders, nil
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []Order{}
	for _, o := range s.orders {
		if o.Status == status {
			orders = append(orders, o.clone())
		}
	}
	return orders, nil
}

// SendNotification hands the order's current state to the configured notifier
func (s *Service) SendNotification(ctx context.Context, orderID string, channel Channel) error {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}

	n := Notification{
		Channel:       channel,
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount,
		Items:         o.Items,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("failed to send %s notification for order %s: %w", channel, orderID, err)
	}
	return nil
}

// commit persists next and makes it the visible state
func (s *Service) commit(ctx context.Context, next []Order) error {
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to save orders", zap.Error(err))
		return fmt.Errorf("failed to save orders: %w", err)
	}
	s.orders = next
	return nil
}

func (s *Service) publish(ctx context.Context, orderID, eventType string, data any) {
	event, err := store.NewEvent(orderID, AggregateType, eventType, data)
	if err == nil {
		err = s.publisher.Publish(ctx, orderID, event)
	}
	if err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (s *Service) indexOf(orderID string) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *Service) snapshot() []Order {
	return append(make([]Order, 0, len(s.orders)+1), s.orders...)
}
