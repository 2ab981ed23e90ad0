package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/example/retail-backoffice/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// mockRestorer records StockIn calls and fails for the listed products
type mockRestorer struct {
	Calls   []restoreCall
	FailFor map[string]error
}

type restoreCall struct {
	ProductID string
	Quantity  int
}

func (m *mockRestorer) StockIn(ctx context.Context, productID string, quantity int) (*inventory.AdjustResult, error) {
	m.Calls = append(m.Calls, restoreCall{ProductID: productID, Quantity: quantity})
	if err, ok := m.FailFor[productID]; ok {
		return nil, err
	}
	return &inventory.AdjustResult{Mode: inventory.ModeAdd, Requested: quantity, Applied: quantity}, nil
}

type mockNotifier struct {
	Sent []Notification
	Err  error
}

func (m *mockNotifier) Notify(ctx context.Context, n Notification) error {
	m.Sent = append(m.Sent, n)
	return m.Err
}

type testService struct {
	svc       *Service
	repo      *mocks.MockRepository[Order]
	stock     *mockRestorer
	notifier  *mockNotifier
	publisher *mocks.MockPublisher
}

func newTestService(t *testing.T, opts ...Option) *testService {
	t.Helper()
	ts := &testService{
		repo:      mocks.NewMockRepository[Order](),
		stock:     &mockRestorer{FailFor: map[string]error{}},
		notifier:  &mockNotifier{},
		publisher: mocks.NewMockPublisher(),
	}
	opts = append([]Option{
		WithNotifier(ts.notifier),
		WithPublisher(ts.publisher),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)

	svc, err := NewService(context.Background(), ts.repo, ts.stock, opts...)
	require.NoError(t, err)
	ts.svc = svc
	return ts
}

func item(productID string, qty int, price string) LineItem {
	return LineItem{ProductID: productID, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func placeOrder(t *testing.T, svc *Service, id string, items ...LineItem) *Order {
	t.Helper()
	o, err := svc.Create(context.Background(), NewOrder{
		ID:            id,
		CustomerID:    "c1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items:         items,
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	return o
}

// ============================================
// Status Tests
// ============================================

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Shipping ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipping, s)

	_, err = ParseStatus("refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipping, false},
		{StatusProcessing, StatusShipping, true},
		{StatusShipping, StatusCompleted, true},
		{StatusShipping, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.want, o.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Create Tests
// ============================================

func TestService_Create_Success(t *testing.T) {
	ts := newTestService(t)

	o := placeOrder(t, ts.svc, "ORD-1", item("p1", 2, "19.99"), item("p2", 1, "5.00"))

	assert.Equal(t, "ORD-1", o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.True(t, decimal.RequireFromString("44.98").Equal(o.TotalAmount))
	assert.Equal(t, fixedNow, o.CreatedAt)
	assert.Len(t, ts.repo.SaveCalls, 1)
	assert.Empty(t, ts.stock.Calls)
	require.Len(t, ts.publisher.PublishCalls, 1)
	assert.Equal(t, EventOrderCreated, ts.publisher.PublishCalls[0].Event.(store.Event).EventType)
}

func TestService_Create_GeneratesID(t *testing.T) {
	ts := newTestService(t)

	o := placeOrder(t, ts.svc, "", item("p1", 1, "1"))

	assert.Regexp(t, `^ORD-[0-9a-f-]{36}$`, o.ID)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		items   []LineItem
		wantErr error
	}{
		{"no items", nil, ErrEmptyOrder},
		{"zero quantity", []LineItem{item("p1", 0, "1")}, ErrInvalidLineItem},
		{"negative price", []LineItem{item("p1", 1, "-1")}, ErrInvalidLineItem},
		{"missing product", []LineItem{item("", 1, "1")}, ErrInvalidLineItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestService(t)

			_, err := ts.svc.Create(context.Background(), NewOrder{Items: tt.items})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, ts.repo.SaveCalls)
		})
	}
}

func TestService_Create_DuplicateID(t *testing.T) {
	ts := newTestService(t)
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))

	_, err := ts.svc.Create(context.Background(), NewOrder{ID: "ORD-1", Items: []LineItem{item("p1", 1, "1")}})

	assert.ErrorIs(t, err, ErrOrderExists)
}

func TestService_Create_SnapshotIsIsolated(t *testing.T) {
	ts := newTestService(t)
	items := []LineItem{item("p1", 3, "2")}

	placeOrder(t, ts.svc, "ORD-1", items...)
	items[0].Quantity = 99

	o, err := ts.svc.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, 3, o.Items[0].Quantity)
}

// ============================================
// Transition Tests
// ============================================

func TestService_Transition_FollowsGraph(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))

	for _, s := range []Status{StatusProcessing, StatusShipping, StatusCompleted} {
		res, err := ts.svc.Transition(ctx, "ORD-1", s)
		require.NoError(t, err)
		assert.Equal(t, s, res.Order.Status)
		assert.False(t, res.OutOfGraph)
	}

	assert.Empty(t, ts.stock.Calls)
}

func TestService_Transition_NotFound(t *testing.T) {
	ts := newTestService(t)

	res, err := ts.svc.Transition(context.Background(), "ORD-404", StatusCancelled)

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, res)
	assert.Empty(t, ts.stock.Calls)
}

func TestService_Transition_UnknownStatus(t *testing.T) {
	ts := newTestService(t)
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))

	_, err := ts.svc.Transition(context.Background(), "ORD-1", Status("lost"))

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_Transition_StrictRejectsOutOfGraph(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))
	for _, s := range []Status{StatusProcessing, StatusShipping, StatusCompleted} {
		_, err := ts.svc.Transition(ctx, "ORD-1", s)
		require.NoError(t, err)
	}

	_, err := ts.svc.Transition(ctx, "ORD-1", StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = ts.svc.Transition(ctx, "ORD-1", StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err := ts.svc.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Empty(t, ts.stock.Calls)
}

func TestService_Transition_PermissiveFlagsOutOfGraph(t *testing.T) {
	ts := newTestService(t, WithStrictTransitions(false))
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))
	_, err := ts.svc.Transition(ctx, "ORD-1", StatusCompleted)
	require.NoError(t, err)

	res, err := ts.svc.Transition(ctx, "ORD-1", StatusPending)

	require.NoError(t, err)
	assert.True(t, res.OutOfGraph)
	assert.Equal(t, StatusCompleted, res.Previous)
	assert.Equal(t, StatusPending, res.Order.Status)
}

func TestService_Transition_CancelRestoresEachItemInOrder(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p2", 4, "1"), item("p1", 2, "1"), item("p2", 1, "1"))
	_, err := ts.svc.Transition(ctx, "ORD-1", StatusProcessing)
	require.NoError(t, err)

	res, err := ts.svc.Transition(ctx, "ORD-1", StatusCancelled)

	require.NoError(t, err)
	assert.Equal(t, []restoreCall{{"p2", 4}, {"p1", 2}, {"p2", 1}}, ts.stock.Calls)
	assert.Len(t, res.Restored, 3)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, StatusProcessing, res.Previous)
}

func TestService_Transition_ReCancelDoesNotRestoreTwice(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 5, "1"))

	_, err := ts.svc.Transition(ctx, "ORD-1", StatusCancelled)
	require.NoError(t, err)
	res, err := ts.svc.Transition(ctx, "ORD-1", StatusCancelled)
	require.NoError(t, err)

	assert.Len(t, ts.stock.Calls, 1)
	assert.Empty(t, res.Restored)
}

func TestService_Transition_PartialRestoreStillRecordsStatus(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	ts.stock.FailFor["p2"] = inventory.ErrNotFound
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"), item("p2", 2, "1"), item("p3", 3, "1"))

	res, err := ts.svc.Transition(ctx, "ORD-1", StatusCancelled)

	require.NoError(t, err)
	assert.Len(t, ts.stock.Calls, 3)
	assert.Len(t, res.Restored, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "p2")

	o, err := ts.svc.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestService_Transition_StorageFailureLeavesOrderUnchanged(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))
	ts.repo.SaveErr = errors.Join(store.ErrStorageUnavailable, errors.New("disk full"))

	_, err := ts.svc.Transition(ctx, "ORD-1", StatusCancelled)

	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.Empty(t, ts.stock.Calls)
	o, err := ts.svc.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
}

// ============================================
// Delete Tests
// ============================================

func TestService_Delete_DoesNotRestoreStock(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 5, "1"))

	deleted, err := ts.svc.Delete(ctx, "ORD-1")

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, ts.stock.Calls)
	_, err = ts.svc.Get(ctx, "ORD-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	deleted, err = ts.svc.Delete(ctx, "ORD-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

// ============================================
// Query Tests
// ============================================

func TestService_ListByStatus(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "1"))
	placeOrder(t, ts.svc, "ORD-2", item("p1", 1, "1"))
	_, err := ts.svc.Transition(ctx, "ORD-2", StatusProcessing)
	require.NoError(t, err)

	pending, err := ts.svc.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ORD-1", pending[0].ID)

	all, err := ts.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// ============================================
// Notification Tests
// ============================================

func TestService_SendNotification(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()
	placeOrder(t, ts.svc, "ORD-1", item("p1", 1, "3"))

	require.NoError(t, ts.svc.SendNotification(ctx, "ORD-1", ChannelEmail))

	require.Len(t, ts.notifier.Sent, 1)
	assert.Equal(t, ChannelEmail, ts.notifier.Sent[0].Channel)
	assert.Equal(t, "alice@example.com", ts.notifier.Sent[0].CustomerEmail)

	err := ts.svc.SendNotification(ctx, "ORD-404", ChannelEmail)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("")
	require.NoError(t, err)
	assert.Equal(t, ChannelEmail, c)

	_, err = ParseChannel("sms")
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

// ============================================
// Ledger Integration Tests
// ============================================

func TestService_CancelRestoresLedgerQuantity(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.NewService(ctx, mocks.NewMockRepository(
		catalog.Product{ID: "p1", Name: "Mug", Status: catalog.StatusActive},
	), nil)
	require.NoError(t, err)
	ledger, err := inventory.NewLedger(ctx, cat, mocks.NewMockRepository[inventory.Record]())
	require.NoError(t, err)
	svc, err := NewService(ctx, mocks.NewMockRepository[Order](), ledger)
	require.NoError(t, err)

	_, err = ledger.StockIn(ctx, "p1", 50)
	require.NoError(t, err)
	placeOrder(t, svc, "ORD-1", item("p1", 5, "4.50"))
	_, err = ledger.StockOut(ctx, "p1", 5)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, "ORD-1", StatusCancelled)
	require.NoError(t, err)

	rec, err := ledger.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Quantity)

	o, err := svc.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, 5, o.Items[0].Quantity)
}
