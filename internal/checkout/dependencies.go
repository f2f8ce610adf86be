package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// OrderClient is the Order Service contract the orchestrator depends on.
type OrderClient interface {
	CreateOrder(ctx context.Context, authToken string, draft *models.OrderDraft) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
}

// PaymentClient is the Payment Service contract the orchestrator depends on.
type PaymentClient interface {
	VerifyOnlinePayment(ctx context.Context, orderID int64, provider models.PaymentProvider, credentials string) (*models.PaymentConfirmation, error)
	GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error)
}

// CartRepository is the Cart Store contract the orchestrator depends on.
type CartRepository interface {
	ListForUser(ctx context.Context, userID int64) ([]models.CartItem, error)
	Remove(ctx context.Context, itemID int64) error
}

// JournalEntry is one durable checkout attempt record.
type JournalEntry struct {
	ID            int64                `json:"id"`
	AttemptID     string               `json:"attempt_id"`
	BuyerID       int64                `json:"buyer_id"`
	SellerID      int64                `json:"seller_id"`
	OrderID       int64                `json:"order_id"`
	State         State                `json:"state"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Warnings      []string             `json:"warnings"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Journal persists checkout attempts and their saga state, making dangling
// awaiting-payment orders observable.
type Journal interface {
	Insert(ctx context.Context, entry *JournalEntry) error
	UpdateState(ctx context.Context, attemptID string, state State, orderID int64, warnings []string) error
	SettleOrder(ctx context.Context, orderID int64, state State) error
	ListAwaitingPayment(ctx context.Context, limit int) ([]*JournalEntry, error)
}

// IdempotencyRecord is the replayable outcome stored under an idempotency
// key: the order the first attempt committed and how far that attempt got.
// A partially completed attempt replays as partially completed, keeping the
// verify-retry endpoint as the only settlement path.
type IdempotencyRecord struct {
	OrderID       int64                `json:"order_id"`
	State         State                `json:"state"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

// IdempotencyStore maps an idempotency key to the outcome of the first
// attempt that committed an order under that key. Get returns nil on a miss.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Set(ctx context.Context, key string, record *IdempotencyRecord) error
}

// EventPublisher emits checkout lifecycle events. Publishing is best-effort;
// failures are logged and never fail a checkout.
type EventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, attemptID string, orderID, buyerID int64) error
	PublishCheckoutPaymentPending(ctx context.Context, attemptID string, orderID, buyerID int64) error
	PublishCheckoutFailed(ctx context.Context, attemptID string, buyerID int64, reason string) error
}
