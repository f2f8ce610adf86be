package clients

import (
	"context"
	"net/http"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

const verifyOnlinePaymentMutation = `
mutation VerifyOnlinePayment($input: VerifyPaymentInput!) {
	verifyOnlinePayment(input: $input) {
		id
		orderId
		paymentStatus
		paidAt
	}
}`

const getPaymentByOrderIDQuery = `
query GetPaymentByOrderID($orderId: Int!) {
	getPaymentByOrderID(orderId: $orderId) {
		id
		orderId
		userId
		amount
		currency
		paymentMethod
		paymentProvider
		paymentStatus
		transactionReference
		paidAt
	}
}`

const refundPaymentMutation = `
mutation RefundPayment($paymentId: Int!) {
	refundPayment(paymentId: $paymentId) {
		id
		orderId
		paymentStatus
		paidAt
	}
}`

// GraphQLPaymentClient talks to the Payment Service's GraphQL endpoint.
type GraphQLPaymentClient struct {
	client *graphql.Client
	logger *zap.Logger
}

func NewGraphQLPaymentClient(cfg config.ServiceConfig, logger *zap.Logger) *GraphQLPaymentClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &GraphQLPaymentClient{
		client: graphql.NewClient(cfg.BaseURL, graphql.WithHTTPClient(httpClient)),
		logger: logger,
	}
}

// VerifyOnlinePayment submits the opaque credential payload for the payment
// linked to the given order. The Payment Service is the sole interpreter of
// the credentials string.
func (c *GraphQLPaymentClient) VerifyOnlinePayment(ctx context.Context, orderID int64, provider models.PaymentProvider, credentials string) (*models.PaymentConfirmation, error) {
	c.logger.Debug("Verifying online payment",
		zap.Int64("order_id", orderID),
		zap.String("provider", string(provider)),
	)

	req := graphql.NewRequest(verifyOnlinePaymentMutation)
	req.Var("input", map[string]interface{}{
		"paymentId":       orderID,
		"paymentProvider": provider,
		"credentials":     credentials,
	})

	var resp struct {
		VerifyOnlinePayment models.PaymentConfirmation `json:"verifyOnlinePayment"`
	}
	if err := c.client.Run(ctx, req, &resp); err != nil {
		c.logger.Error("Payment verification rejected",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("Payment verified",
		zap.Int64("order_id", orderID),
		zap.String("payment_status", string(resp.VerifyOnlinePayment.PaymentStatus)),
	)

	return &resp.VerifyOnlinePayment, nil
}

// GetPaymentByOrderID fetches the payment record linked to an order.
func (c *GraphQLPaymentClient) GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	req := graphql.NewRequest(getPaymentByOrderIDQuery)
	req.Var("orderId", orderID)

	var resp struct {
		GetPaymentByOrderID *models.Payment `json:"getPaymentByOrderID"`
	}
	if err := c.client.Run(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.GetPaymentByOrderID == nil {
		return nil, apperrors.ErrNotFound
	}

	return resp.GetPaymentByOrderID, nil
}

// RefundPayment asks the Payment Service to refund a paid payment.
func (c *GraphQLPaymentClient) RefundPayment(ctx context.Context, paymentID int64) (*models.PaymentConfirmation, error) {
	c.logger.Info("Requesting refund", zap.Int64("payment_id", paymentID))

	req := graphql.NewRequest(refundPaymentMutation)
	req.Var("paymentId", paymentID)

	var resp struct {
		RefundPayment models.PaymentConfirmation `json:"refundPayment"`
	}
	if err := c.client.Run(ctx, req, &resp); err != nil {
		c.logger.Error("Refund failed",
			zap.Int64("payment_id", paymentID),
			zap.Error(err),
		)
		return nil, err
	}

	return &resp.RefundPayment, nil
}
