package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
)

// GetPayment handles GET /api/v1/checkout/orders/:id/payment
func (h *Handlers) GetPayment(c *gin.Context) {
	if _, err := h.sessions.FromBearer(c.GetHeader("Authorization")); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	payment, err := h.checkouts.PaymentForOrder(c.Request.Context(), orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// VerifyPayment handles POST /api/v1/checkout/orders/:id/payment/verify.
// It is the buyer's retry path for an order left awaiting payment.
func (h *Handlers) VerifyPayment(c *gin.Context) {
	if _, err := h.sessions.FromBearer(c.GetHeader("Authorization")); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var details checkout.PaymentDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		h.logger.Error("Failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	confirmation, err := h.checkouts.VerifyPayment(c.Request.Context(), orderID, &details)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmation)
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
