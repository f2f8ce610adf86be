package checkout

import (
	"sort"

	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// SellerGroup is the slice of a selection belonging to one seller. The
// system never attempts a multi-seller atomic order; each group becomes its
// own checkout.
type SellerGroup struct {
	SellerID       int64
	SellerUsername string
	Items          []models.CartItem
}

// GroupBySeller splits a selection into per-seller groups, ordered by seller
// id for deterministic processing.
func GroupBySeller(items []models.CartItem) []SellerGroup {
	bySeller := make(map[int64]*SellerGroup)
	for _, item := range items {
		group, ok := bySeller[item.SellerID]
		if !ok {
			group = &SellerGroup{
				SellerID:       item.SellerID,
				SellerUsername: item.SellerUsername,
			}
			bySeller[item.SellerID] = group
		}
		group.Items = append(group.Items, item)
	}

	groups := make([]SellerGroup, 0, len(bySeller))
	for _, group := range bySeller {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].SellerID < groups[j].SellerID
	})
	return groups
}
