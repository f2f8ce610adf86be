package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// HTTPOrderClient talks to the Order Service over its REST contract.
type HTTPOrderClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPOrderClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPOrderClient {
	return &HTTPOrderClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type createOrderResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// CreateOrder submits a draft wholesale. The buyer's bearer token is passed
// through; the Order Service owns its verification.
func (c *HTTPOrderClient) CreateOrder(ctx context.Context, authToken string, draft *models.OrderDraft) (int64, error) {
	c.logger.Debug("Submitting order draft",
		zap.Int64("seller_id", draft.SellerID),
		zap.Int("item_count", len(draft.Items)),
	)

	body, err := json.Marshal(draft)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/create-order", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		if !strings.HasPrefix(authToken, "Bearer ") {
			authToken = "Bearer " + authToken
		}
		httpReq.Header.Set("Authorization", authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Order request failed",
			zap.Int64("seller_id", draft.SellerID),
			zap.Error(err),
		)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Order request returned error",
			zap.Int64("seller_id", draft.SellerID),
			zap.Int("status_code", resp.StatusCode),
		)
		return 0, fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var result createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}

	c.logger.Info("Order created",
		zap.Int64("order_id", result.ID),
		zap.Int64("seller_id", draft.SellerID),
	)

	return result.ID, nil
}

// GetOrder fetches an order by id.
func (c *HTTPOrderClient) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	url := fmt.Sprintf("%s/orders/%d", c.baseURL, orderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}

	return &order, nil
}
