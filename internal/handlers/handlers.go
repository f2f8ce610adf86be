package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/checkout"
	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/models"
	"github.com/doma-shop/doma-checkout-service/internal/session"
)

// CheckoutService is the orchestrator surface the handlers depend on.
type CheckoutService interface {
	InitiateAll(ctx context.Context, req *checkout.MultiRequest) ([]*checkout.Result, error)
	VerifyPayment(ctx context.Context, orderID int64, details *checkout.PaymentDetails) (*models.PaymentConfirmation, error)
	PaymentForOrder(ctx context.Context, orderID int64) (*models.Payment, error)
	AwaitingPayment(ctx context.Context, limit int) ([]*checkout.JournalEntry, error)
}

// Handlers holds all HTTP handlers for the checkout service.
type Handlers struct {
	checkouts CheckoutService
	sessions  *session.Decoder
	config    *config.Config
	logger    *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	checkouts CheckoutService,
	sessions *session.Decoder,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		checkouts: checkouts,
		sessions:  sessions,
		config:    cfg,
		logger:    logger,
	}
}

// handleError maps application errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	var orderErr *apperrors.OrderCreationError
	var paymentErr *apperrors.PaymentVerificationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &orderErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": orderErr.Error()})
	case errors.As(err, &paymentErr):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":    paymentErr.Error(),
			"order_id": paymentErr.OrderID,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
