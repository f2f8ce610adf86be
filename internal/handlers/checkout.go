package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// CheckoutRequest is the body of POST /api/v1/checkout. The items are the
// buyer's selection as fetched from the Cart Store; the selection may span
// multiple sellers.
type CheckoutRequest struct {
	Items           []models.CartItem        `json:"items" binding:"required"`
	ShippingMethod  string                   `json:"shipping_method"`
	ShippingAddress string                   `json:"shipping_address"`
	ContactNumber   string                   `json:"contact_number"`
	PaymentMethod   models.PaymentMethod     `json:"payment_method"`
	PaymentDetails  *checkout.PaymentDetails `json:"payment_details,omitempty"`
}

// Checkout handles POST /api/v1/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	sess, err := h.sessions.FromBearer(c.GetHeader("Authorization"))
	if err != nil {
		h.logger.Warn("Rejected unauthenticated checkout", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	multi := &checkout.MultiRequest{
		Session:         *sess,
		AuthToken:       c.GetHeader("Authorization"),
		Items:           req.Items,
		ShippingMethod:  req.ShippingMethod,
		ShippingAddress: req.ShippingAddress,
		ContactNumber:   req.ContactNumber,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  req.PaymentDetails,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
	}

	results, err := h.checkouts.InitiateAll(c.Request.Context(), multi)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(checkoutStatus(results), gin.H{"results": results})
}

// checkoutStatus picks the response code for a batch of per-seller outcomes.
// Any created order makes the batch a 201; a batch where every group failed
// before order creation is a 502.
func checkoutStatus(results []*checkout.Result) int {
	anyCreated := false
	for _, r := range results {
		if r.OrderID != 0 {
			anyCreated = true
		}
	}
	if anyCreated {
		return http.StatusCreated
	}
	return http.StatusBadGateway
}

// AwaitingPayment handles GET /api/v1/checkout/awaiting-payment
func (h *Handlers) AwaitingPayment(c *gin.Context) {
	sess, err := h.sessions.FromBearer(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	if sess.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	entries, err := h.checkouts.AwaitingPayment(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": entries})
}
