package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/models"
	"github.com/doma-shop/doma-checkout-service/internal/session"
)

const defaultShippingMethod = "delivery"

// Request is a single-seller checkout: the selected cart items, the buyer's
// session, and the shipping and payment choices.
type Request struct {
	Session         session.Session
	AuthToken       string
	Items           []models.CartItem
	SellerID        int64
	SellerUsername  string
	ShippingMethod  string
	ShippingAddress string
	ContactNumber   string
	PaymentMethod   models.PaymentMethod
	PaymentDetails  *PaymentDetails
	IdempotencyKey  string
}

// MultiRequest is a checkout over a possibly mixed-seller selection. It is
// split into one Request per seller group.
type MultiRequest struct {
	Session         session.Session
	AuthToken       string
	Items           []models.CartItem
	ShippingMethod  string
	ShippingAddress string
	ContactNumber   string
	PaymentMethod   models.PaymentMethod
	PaymentDetails  *PaymentDetails
	IdempotencyKey  string
}

// Result is the single terminal outcome presented to the caller.
type Result struct {
	AttemptID     string               `json:"attempt_id"`
	OrderID       int64                `json:"order_id"`
	State         State                `json:"state"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Warnings      []string             `json:"warnings,omitempty"`
	Replayed      bool                 `json:"replayed,omitempty"`
}

// Orchestrator sequences order creation, payment verification, and cart
// reconciliation against independently owned services.
type Orchestrator struct {
	orders      OrderClient
	payments    PaymentClient
	cart        CartRepository
	journal     Journal
	idempotency IdempotencyStore
	publisher   EventPublisher
	config      *config.Config
	logger      *zap.Logger
}

func NewOrchestrator(
	orders OrderClient,
	payments PaymentClient,
	cart CartRepository,
	journal Journal,
	idempotency IdempotencyStore,
	publisher EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		orders:      orders,
		payments:    payments,
		cart:        cart,
		journal:     journal,
		idempotency: idempotency,
		publisher:   publisher,
		config:      cfg,
		logger:      logger,
	}
}

// Initiate drives one single-seller checkout to a terminal state.
//
// Order creation always precedes payment verification, and cart
// reconciliation always happens last. Once the order exists, no step is
// rolled back: a failed online verification leaves the order awaiting
// payment and keeps the cart items in place so the buyer can retry.
func (o *Orchestrator) Initiate(ctx context.Context, req *Request) (*Result, error) {
	if req.ShippingMethod == "" {
		req.ShippingMethod = defaultShippingMethod
	}

	if err := ValidateRequest(req); err != nil {
		checkoutsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if replay := o.replayedResult(ctx, req.IdempotencyKey); replay != nil {
		return replay, nil
	}

	draft := buildDraft(req)
	entry := &JournalEntry{
		AttemptID:     uuid.NewString(),
		BuyerID:       req.Session.UserID,
		SellerID:      req.SellerID,
		State:         StateDrafting,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   draft.Total(),
	}
	o.record(ctx, entry)

	o.logger.Info("Initiating checkout",
		zap.String("attempt_id", entry.AttemptID),
		zap.Int64("buyer_id", req.Session.UserID),
		zap.Int64("seller_id", req.SellerID),
		zap.Int("item_count", len(req.Items)),
		zap.String("payment_method", string(req.PaymentMethod)),
	)

	orderID, err := o.orders.CreateOrder(ctx, req.AuthToken, draft)
	if err != nil {
		o.moveTo(ctx, entry, StateFailed, nil)
		o.publishFailed(ctx, entry, err.Error())
		checkoutsTotal.WithLabelValues("failed").Inc()
		return nil, &apperrors.OrderCreationError{Err: err}
	}

	entry.OrderID = orderID
	o.moveTo(ctx, entry, StateOrderPending, nil)
	o.rememberOutcome(ctx, req.IdempotencyKey, &IdempotencyRecord{
		OrderID:       orderID,
		State:         StateOrderPending,
		PaymentStatus: models.PaymentStatusPending,
	})

	result := &Result{
		AttemptID:     entry.AttemptID,
		OrderID:       orderID,
		PaymentStatus: models.PaymentStatusPending,
	}

	if req.PaymentMethod == models.PaymentMethodOnline {
		o.moveTo(ctx, entry, StatePaymentPending, nil)

		credentials, err := req.PaymentDetails.EncodeCredentials()
		if err != nil {
			// Unreachable after validation, kept as a hard stop.
			return nil, err
		}

		confirmation, err := o.payments.VerifyOnlinePayment(ctx, orderID, req.PaymentDetails.Provider, credentials)
		if err != nil {
			verr := &apperrors.PaymentVerificationError{OrderID: orderID, Err: err}
			result.State = StatePartiallyCompleted
			result.Warnings = append(result.Warnings, verr.Error())
			o.moveTo(ctx, entry, StatePartiallyCompleted, result.Warnings)
			o.rememberOutcome(ctx, req.IdempotencyKey, &IdempotencyRecord{
				OrderID:       orderID,
				State:         StatePartiallyCompleted,
				PaymentStatus: models.PaymentStatusPending,
			})
			o.publishPaymentPending(ctx, entry)
			checkoutsTotal.WithLabelValues("payment_pending").Inc()
			o.logger.Warn("Checkout left awaiting payment",
				zap.String("attempt_id", entry.AttemptID),
				zap.Int64("order_id", orderID),
				zap.Error(err),
			)
			return result, nil
		}
		result.PaymentStatus = confirmation.PaymentStatus
	}

	result.Warnings = append(result.Warnings, o.reconcileCart(ctx, req.Items)...)
	result.State = StateCompleted
	o.moveTo(ctx, entry, StateCompleted, result.Warnings)
	o.rememberOutcome(ctx, req.IdempotencyKey, &IdempotencyRecord{
		OrderID:       orderID,
		State:         StateCompleted,
		PaymentStatus: result.PaymentStatus,
	})
	o.publishCompleted(ctx, entry)
	checkoutsTotal.WithLabelValues("completed").Inc()

	o.logger.Info("Checkout completed",
		zap.String("attempt_id", entry.AttemptID),
		zap.Int64("order_id", orderID),
		zap.Int("warning_count", len(result.Warnings)),
	)

	return result, nil
}

// InitiateAll splits a mixed-seller selection into per-seller groups and
// runs one checkout per group. Groups are independent: a failed group is
// reported in its slot and does not stop the remaining groups.
func (o *Orchestrator) InitiateAll(ctx context.Context, req *MultiRequest) ([]*Result, error) {
	groups := GroupBySeller(req.Items)
	if len(groups) == 0 {
		return nil, apperrors.NewValidationError("items", "at least one item is required")
	}

	results := make([]*Result, 0, len(groups))
	for _, group := range groups {
		sub := &Request{
			Session:         req.Session,
			AuthToken:       req.AuthToken,
			Items:           group.Items,
			SellerID:        group.SellerID,
			SellerUsername:  group.SellerUsername,
			ShippingMethod:  req.ShippingMethod,
			ShippingAddress: req.ShippingAddress,
			ContactNumber:   req.ContactNumber,
			PaymentMethod:   req.PaymentMethod,
			PaymentDetails:  req.PaymentDetails,
			IdempotencyKey:  sellerScopedKey(req.IdempotencyKey, group.SellerID),
		}

		result, err := o.Initiate(ctx, sub)
		if err != nil {
			results = append(results, &Result{
				State:    StateFailed,
				Warnings: []string{err.Error()},
			})
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// VerifyPayment is the user-initiated retry for an order left awaiting
// payment. On success the journal entry for the order is settled.
func (o *Orchestrator) VerifyPayment(ctx context.Context, orderID int64, details *PaymentDetails) (*models.PaymentConfirmation, error) {
	credentials, err := details.EncodeCredentials()
	if err != nil {
		return nil, err
	}

	confirmation, err := o.payments.VerifyOnlinePayment(ctx, orderID, details.Provider, credentials)
	if err != nil {
		return nil, &apperrors.PaymentVerificationError{OrderID: orderID, Err: err}
	}

	if o.journal != nil {
		if err := o.journal.SettleOrder(ctx, orderID, StateCompleted); err != nil {
			o.logger.Error("Failed to settle journal entry",
				zap.Int64("order_id", orderID),
				zap.Error(err),
			)
		}
	}

	return confirmation, nil
}

// PaymentForOrder looks up the payment linked to an order.
func (o *Orchestrator) PaymentForOrder(ctx context.Context, orderID int64) (*models.Payment, error) {
	return o.payments.GetPaymentByOrderID(ctx, orderID)
}

// AwaitingPayment lists journaled checkouts whose orders still lack a
// confirmed payment.
func (o *Orchestrator) AwaitingPayment(ctx context.Context, limit int) ([]*JournalEntry, error) {
	if o.journal == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return o.journal.ListAwaitingPayment(ctx, limit)
}

func buildDraft(req *Request) *models.OrderDraft {
	items := make([]models.OrderLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.LineItem())
	}

	return &models.OrderDraft{
		BuyerName:       req.Session.Username,
		SellerID:        req.SellerID,
		SellerUsername:  req.SellerUsername,
		ShippingMethod:  req.ShippingMethod,
		ShippingAddress: req.ShippingAddress,
		ContactNumber:   req.ContactNumber,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
	}
}

func (o *Orchestrator) replayedResult(ctx context.Context, key string) *Result {
	if o.idempotency == nil || key == "" || !o.config.Features.EnableIdempotency {
		return nil
	}

	record, err := o.idempotency.Get(ctx, key)
	if err != nil {
		// Degraded idempotency store: proceed with a fresh attempt.
		o.logger.Warn("Idempotency lookup failed", zap.Error(err))
		return nil
	}
	if record == nil {
		return nil
	}

	o.logger.Info("Replaying checkout for idempotency key",
		zap.Int64("order_id", record.OrderID),
		zap.String("state", string(record.State)),
	)
	return &Result{
		OrderID:       record.OrderID,
		State:         record.State,
		PaymentStatus: record.PaymentStatus,
		Replayed:      true,
	}
}

func (o *Orchestrator) rememberOutcome(ctx context.Context, key string, record *IdempotencyRecord) {
	if o.idempotency == nil || key == "" || !o.config.Features.EnableIdempotency {
		return
	}
	if err := o.idempotency.Set(ctx, key, record); err != nil {
		o.logger.Warn("Failed to record idempotency outcome",
			zap.Int64("order_id", record.OrderID),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) record(ctx context.Context, entry *JournalEntry) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Insert(ctx, entry); err != nil {
		o.logger.Error("Failed to journal checkout attempt",
			zap.String("attempt_id", entry.AttemptID),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) moveTo(ctx context.Context, entry *JournalEntry, to State, warnings []string) {
	if !CanTransition(entry.State, to) {
		o.logger.Error("Invalid checkout state transition",
			zap.String("attempt_id", entry.AttemptID),
			zap.String("from", string(entry.State)),
			zap.String("to", string(to)),
		)
		return
	}
	entry.State = to
	entry.Warnings = warnings

	if o.journal == nil {
		return
	}
	if err := o.journal.UpdateState(ctx, entry.AttemptID, to, entry.OrderID, warnings); err != nil {
		o.logger.Error("Failed to update journal state",
			zap.String("attempt_id", entry.AttemptID),
			zap.String("state", string(to)),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) publishCompleted(ctx context.Context, entry *JournalEntry) {
	if o.publisher == nil || !o.config.Features.EnableCheckoutEvents {
		return
	}
	if err := o.publisher.PublishCheckoutCompleted(ctx, entry.AttemptID, entry.OrderID, entry.BuyerID); err != nil {
		o.logger.Error("Failed to publish checkout completed event",
			zap.String("attempt_id", entry.AttemptID),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) publishPaymentPending(ctx context.Context, entry *JournalEntry) {
	if o.publisher == nil || !o.config.Features.EnableCheckoutEvents {
		return
	}
	if err := o.publisher.PublishCheckoutPaymentPending(ctx, entry.AttemptID, entry.OrderID, entry.BuyerID); err != nil {
		o.logger.Error("Failed to publish payment pending event",
			zap.String("attempt_id", entry.AttemptID),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) publishFailed(ctx context.Context, entry *JournalEntry, reason string) {
	if o.publisher == nil || !o.config.Features.EnableCheckoutEvents {
		return
	}
	if err := o.publisher.PublishCheckoutFailed(ctx, entry.AttemptID, entry.BuyerID, reason); err != nil {
		o.logger.Error("Failed to publish checkout failed event",
			zap.String("attempt_id", entry.AttemptID),
			zap.Error(err),
		)
	}
}

func sellerScopedKey(key string, sellerID int64) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", key, sellerID)
}
