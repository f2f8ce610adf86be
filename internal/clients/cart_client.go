package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// HTTPCartClient talks to the Cart Store.
type HTTPCartClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPCartClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPCartClient {
	return &HTTPCartClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// ListForUser returns the user's current cart contents.
func (c *HTTPCartClient) ListForUser(ctx context.Context, userID int64) ([]models.CartItem, error) {
	url := fmt.Sprintf("%s/cart/%d", c.baseURL, userID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cart store returned status %d", resp.StatusCode)
	}

	var items []models.CartItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	return items, nil
}

// Remove deletes a cart item by id. Removing an item that is already gone is
// a no-op, so retries are safe.
func (c *HTTPCartClient) Remove(ctx context.Context, itemID int64) error {
	url := fmt.Sprintf("%s/cart/remove/%d", c.baseURL, itemID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Cart removal failed",
			zap.Int64("cart_item_id", itemID),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("Cart item already removed", zap.Int64("cart_item_id", itemID))
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("cart store returned status %d", resp.StatusCode)
	}

	return nil
}

// Add puts an item into the user's cart.
func (c *HTTPCartClient) Add(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/cart/add", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("cart store returned status %d", resp.StatusCode)
	}

	var created models.CartItem
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}

	return &created, nil
}
