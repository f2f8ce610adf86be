package models

import "github.com/shopspring/decimal"

func init() {
	// DOMA services exchange amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// CartItem is a line in the buyer's cart as served by the Cart Store.
type CartItem struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	ProductID      int64           `json:"product_id"`
	VariantID      int64           `json:"variant_id"`
	SellerID       int64           `json:"seller_id"`
	SellerUsername string          `json:"seller_username"`
	ProductName    string          `json:"product_name"`
	VariantName    string          `json:"variant_name"`
	Size           string          `json:"size"`
	Color          string          `json:"color"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ImageURL       string          `json:"image_url"`
}

// LineItem converts a cart item into an order line item, recomputing the
// subtotal from price and quantity rather than trusting the stored value.
func (i CartItem) LineItem() OrderLineItem {
	return OrderLineItem{
		ProductID:   i.ProductID,
		VariantID:   i.VariantID,
		ProductName: i.ProductName,
		VariantName: i.VariantName,
		Size:        i.Size,
		Color:       i.Color,
		Price:       i.Price,
		Quantity:    i.Quantity,
		Subtotal:    i.Price.Mul(decimal.NewFromInt(int64(i.Quantity))),
		ImageURL:    i.ImageURL,
	}
}
