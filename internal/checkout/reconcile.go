package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

const maxConcurrentRemovals = 4

// reconcileCart removes the checked-out items from the Cart Store by the ids
// captured at selection time. Removals run concurrently and fail
// independently; a failure becomes a warning, never an error, since the cart
// self-heals on the next fetch.
func (o *Orchestrator) reconcileCart(ctx context.Context, items []models.CartItem) []string {
	var g errgroup.Group
	g.SetLimit(maxConcurrentRemovals)

	var mu sync.Mutex
	var warnings []string

	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := o.cart.Remove(ctx, item.ID); err != nil {
				w := &apperrors.CartWarning{CartItemID: item.ID, Err: err}
				o.logger.Warn("Cart reconciliation incomplete",
					zap.Int64("cart_item_id", item.ID),
					zap.Error(err),
				)
				cartRemovalFailures.Inc()
				mu.Lock()
				warnings = append(warnings, w.Error())
				mu.Unlock()
			}
			return nil
		})
	}
	// Removal failures become warnings, never group errors.
	_ = g.Wait()

	return warnings
}
