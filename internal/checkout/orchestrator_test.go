package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/models"
	"github.com/doma-shop/doma-checkout-service/internal/session"
)

type fakeOrders struct {
	mu     sync.Mutex
	nextID int64
	err    error
	drafts []*models.OrderDraft
}

func (f *fakeOrders) CreateOrder(ctx context.Context, authToken string, draft *models.OrderDraft) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.drafts = append(f.drafts, draft)
	return f.nextID, nil
}

func (f *fakeOrders) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return nil, apperrors.ErrNotFound
}

type fakePayments struct {
	mu     sync.Mutex
	err    error
	calls  int
	status models.PaymentStatus
}

func (f *fakePayments) VerifyOnlinePayment(ctx context.Context, orderID int64, provider models.PaymentProvider, credentials string) (*models.PaymentConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = models.PaymentStatusPaid
	}
	return &models.PaymentConfirmation{ID: 1, OrderID: orderID, PaymentStatus: status}, nil
}

func (f *fakePayments) GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	return &models.Payment{ID: 1, OrderID: orderID, PaymentStatus: models.PaymentStatusPending}, nil
}

type fakeCart struct {
	mu      sync.Mutex
	removed []int64
	failIDs map[int64]bool
}

func (f *fakeCart) ListForUser(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return nil, nil
}

func (f *fakeCart) Remove(ctx context.Context, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[itemID] {
		return errors.New("cart store unavailable")
	}
	f.removed = append(f.removed, itemID)
	return nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []*JournalEntry
	states  []State
	settled map[int64]State
}

func (f *fakeJournal) Insert(ctx context.Context, entry *JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) UpdateState(ctx context.Context, attemptID string, state State, orderID int64, warnings []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
	return nil
}

func (f *fakeJournal) SettleOrder(ctx context.Context, orderID int64, state State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled == nil {
		f.settled = make(map[int64]State)
	}
	f.settled[orderID] = state
	return nil
}

func (f *fakeJournal) ListAwaitingPayment(ctx context.Context, limit int) ([]*JournalEntry, error) {
	return nil, nil
}

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]*IdempotencyRecord
}

func (f *fakeIdempotency) Get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func (f *fakeIdempotency) Set(ctx context.Context, key string, record *IdempotencyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = make(map[string]*IdempotencyRecord)
	}
	f.keys[key] = record
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishCheckoutCompleted(ctx context.Context, attemptID string, orderID, buyerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "completed")
	return nil
}

func (f *fakePublisher) PublishCheckoutPaymentPending(ctx context.Context, attemptID string, orderID, buyerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "payment_pending")
	return nil
}

func (f *fakePublisher) PublishCheckoutFailed(ctx context.Context, attemptID string, buyerID int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "failed")
	return nil
}

type fixture struct {
	orders       *fakeOrders
	payments     *fakePayments
	cart         *fakeCart
	journal      *fakeJournal
	idempotency  *fakeIdempotency
	publisher    *fakePublisher
	orchestrator *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:      &fakeOrders{},
		payments:    &fakePayments{},
		cart:        &fakeCart{},
		journal:     &fakeJournal{},
		idempotency: &fakeIdempotency{},
		publisher:   &fakePublisher{},
	}
	cfg := &config.Config{
		Features: config.FeatureFlags{
			EnableCheckoutEvents: true,
			EnableIdempotency:    true,
		},
	}
	f.orchestrator = NewOrchestrator(
		f.orders, f.payments, f.cart, f.journal, f.idempotency, f.publisher,
		cfg, zap.NewNop(),
	)
	return f
}

func buyerSession() session.Session {
	return session.Session{UserID: 7, Username: "maria", Role: "user"}
}

func cartItem(id, sellerID int64, price int64, qty int) models.CartItem {
	return models.CartItem{
		ID:             id,
		UserID:         7,
		ProductID:      id * 100,
		VariantID:      id * 1000,
		SellerID:       sellerID,
		SellerUsername: "seller",
		ProductName:    "Shirt",
		Price:          decimal.NewFromInt(price),
		Quantity:       qty,
	}
}

func codRequest() *Request {
	return &Request{
		Session:         buyerSession(),
		AuthToken:       "Bearer token",
		Items:           []models.CartItem{cartItem(1, 3, 300, 2), cartItem(2, 3, 400, 1)},
		SellerID:        3,
		SellerUsername:  "seller",
		ShippingAddress: "123 Mabini St",
		ContactNumber:   "09171234567",
		PaymentMethod:   models.PaymentMethodCOD,
	}
}

func onlineRequest(details *PaymentDetails) *Request {
	req := codRequest()
	req.PaymentMethod = models.PaymentMethodOnline
	req.PaymentDetails = details
	return req
}

func gcashDetails() *PaymentDetails {
	return &PaymentDetails{
		Provider:    models.ProviderGCash,
		GCashNumber: "09171234567",
		GCashPIN:    "1234",
	}
}

func TestInitiate_CashOnDelivery(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator.Initiate(context.Background(), codRequest())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, int64(1), result.OrderID)
	assert.Empty(t, result.Warnings)

	// COD never touches the payment service.
	assert.Equal(t, 0, f.payments.calls)

	// Both cart items are removed.
	assert.ElementsMatch(t, []int64{1, 2}, f.cart.removed)

	// 300*2 + 400*1
	require.Len(t, f.orders.drafts, 1)
	assert.True(t, f.orders.drafts[0].Total().Equal(decimal.NewFromInt(1000)),
		"total = %s", f.orders.drafts[0].Total())
	assert.Equal(t, "delivery", f.orders.drafts[0].ShippingMethod)
	assert.Equal(t, "maria", f.orders.drafts[0].BuyerName)
}

func TestInitiate_OnlinePaymentVerified(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator.Initiate(context.Background(), onlineRequest(gcashDetails()))
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
	assert.Equal(t, 1, f.payments.calls)
	assert.ElementsMatch(t, []int64{1, 2}, f.cart.removed)
	assert.Contains(t, f.publisher.events, "completed")
}

func TestInitiate_OnlinePaymentRejected(t *testing.T) {
	f := newFixture(t)
	f.payments.err = errors.New("invalid credentials")

	result, err := f.orchestrator.Initiate(context.Background(), onlineRequest(gcashDetails()))
	require.NoError(t, err, "a created order is a reportable outcome, not an error")

	assert.Equal(t, StatePartiallyCompleted, result.State)
	assert.Equal(t, int64(1), result.OrderID, "the order must exist")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "payment verification failed")

	// The cart is left intact so the buyer can retry.
	assert.Empty(t, f.cart.removed)
	assert.Contains(t, f.publisher.events, "payment_pending")
	assert.NotContains(t, f.publisher.events, "completed")
}

func TestInitiate_OrderCreationFails(t *testing.T) {
	f := newFixture(t)
	f.orders.err = errors.New("order service down")

	result, err := f.orchestrator.Initiate(context.Background(), codRequest())
	require.Error(t, err)
	assert.Nil(t, result)

	var orderErr *apperrors.OrderCreationError
	assert.ErrorAs(t, err, &orderErr)

	// Nothing downstream runs.
	assert.Equal(t, 0, f.payments.calls)
	assert.Empty(t, f.cart.removed)
	assert.Contains(t, f.publisher.events, "failed")

	require.Len(t, f.journal.entries, 1)
	assert.Equal(t, StateFailed, f.journal.entries[0].State)
}

func TestInitiate_ValidationRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"missing buyer", func(r *Request) { r.Session.UserID = 0 }, "user_id"},
		{"empty items", func(r *Request) { r.Items = nil }, "items"},
		{"zero quantity", func(r *Request) { r.Items[0].Quantity = 0 }, "items"},
		{"mixed sellers", func(r *Request) { r.Items[1].SellerID = 99 }, "items"},
		{"divergent seller usernames", func(r *Request) { r.Items[1].SellerUsername = "impostor" }, "items"},
		{"missing address", func(r *Request) { r.ShippingAddress = "" }, "shipping_address"},
		{"missing contact", func(r *Request) { r.ContactNumber = "" }, "contact_number"},
		{"online without details", func(r *Request) {
			r.PaymentMethod = models.PaymentMethodOnline
			r.PaymentDetails = nil
		}, "payment_details"},
		{"unknown payment method", func(r *Request) { r.PaymentMethod = "wire" }, "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := codRequest()
			tt.mutate(req)

			_, err := f.orchestrator.Initiate(context.Background(), req)
			require.Error(t, err)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			// Validation failures never reach the order service.
			assert.Empty(t, f.orders.drafts)
		})
	}
}

func TestInitiate_CartRemovalFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.cart.failIDs = map[int64]bool{2: true}

	result, err := f.orchestrator.Initiate(context.Background(), codRequest())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State, "a stale cart line never fails a checkout")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "cart item 2")
	assert.ElementsMatch(t, []int64{1}, f.cart.removed)
}

func TestInitiate_IdempotentReplay(t *testing.T) {
	f := newFixture(t)

	req := codRequest()
	req.IdempotencyKey = "key-1"

	first, err := f.orchestrator.Initiate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.orchestrator.Initiate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, StateCompleted, second.State)

	// Only one order was ever created.
	assert.Len(t, f.orders.drafts, 1)
}

func TestInitiate_ReplayAfterFailedPayment(t *testing.T) {
	f := newFixture(t)
	f.payments.err = errors.New("invalid credentials")

	req := onlineRequest(gcashDetails())
	req.IdempotencyKey = "key-1"

	first, err := f.orchestrator.Initiate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, StatePartiallyCompleted, first.State)

	f.payments.err = nil

	// Re-submitting the same form must not invent a completed outcome: the
	// replay reports how far the first attempt got, and payment settlement
	// stays with the verify-retry path.
	second, err := f.orchestrator.Initiate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, StatePartiallyCompleted, second.State)
	assert.Equal(t, models.PaymentStatusPending, second.PaymentStatus)
	assert.Equal(t, first.OrderID, second.OrderID)

	assert.Len(t, f.orders.drafts, 1, "no second order")
	assert.Equal(t, 1, f.payments.calls, "replay does not re-verify")
	assert.Empty(t, f.cart.removed, "cart untouched until the checkout completes")
}

func TestInitiateAll_SplitsBySeller(t *testing.T) {
	f := newFixture(t)

	req := &MultiRequest{
		Session:   buyerSession(),
		AuthToken: "Bearer token",
		Items: []models.CartItem{
			cartItem(1, 3, 300, 1),
			cartItem(2, 5, 200, 1),
			cartItem(3, 3, 100, 1),
		},
		ShippingAddress: "123 Mabini St",
		ContactNumber:   "09171234567",
		PaymentMethod:   models.PaymentMethodCOD,
	}

	results, err := f.orchestrator.InitiateAll(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// One order per seller, ordered by seller id.
	assert.Len(t, f.orders.drafts, 2)
	assert.Equal(t, int64(3), f.orders.drafts[0].SellerID)
	assert.Equal(t, int64(5), f.orders.drafts[1].SellerID)

	for _, r := range results {
		assert.Equal(t, StateCompleted, r.State)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, f.cart.removed)
}

func TestInitiateAll_FailedGroupDoesNotStopOthers(t *testing.T) {
	f := newFixture(t)

	req := &MultiRequest{
		Session:   buyerSession(),
		AuthToken: "Bearer token",
		Items: []models.CartItem{
			{ID: 1, SellerID: 3, ProductID: 100, Price: decimal.NewFromInt(300), Quantity: 0}, // invalid
			cartItem(2, 5, 200, 1),
		},
		ShippingAddress: "123 Mabini St",
		ContactNumber:   "09171234567",
		PaymentMethod:   models.PaymentMethodCOD,
	}

	results, err := f.orchestrator.InitiateAll(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, StateFailed, results[0].State)
	assert.Equal(t, StateCompleted, results[1].State)
	assert.Len(t, f.orders.drafts, 1)
}

func TestInitiateAll_EmptySelection(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.InitiateAll(context.Background(), &MultiRequest{
		Session: buyerSession(),
	})
	require.Error(t, err)

	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestVerifyPayment_RetrySettlesJournal(t *testing.T) {
	f := newFixture(t)

	confirmation, err := f.orchestrator.VerifyPayment(context.Background(), 55, gcashDetails())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, confirmation.PaymentStatus)
	assert.Equal(t, StateCompleted, f.journal.settled[55])
}

func TestVerifyPayment_Failure(t *testing.T) {
	f := newFixture(t)
	f.payments.err = errors.New("invalid credentials")

	_, err := f.orchestrator.VerifyPayment(context.Background(), 55, gcashDetails())
	require.Error(t, err)

	var verr *apperrors.PaymentVerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, int64(55), verr.OrderID)
	assert.Empty(t, f.journal.settled)
}

func TestInitiate_JournalRecordsProgress(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.Initiate(context.Background(), onlineRequest(gcashDetails()))
	require.NoError(t, err)

	require.Len(t, f.journal.entries, 1)
	assert.Equal(t, []State{StateOrderPending, StatePaymentPending, StateCompleted}, f.journal.states)
}
