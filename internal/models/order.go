package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the seller-visible order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentMethod selects the checkout branch.
type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod"
)

// OrderLineItem is a snapshot of a cart item at order time. Line items are
// created with the order and never mutated afterwards.
type OrderLineItem struct {
	ProductID   int64           `json:"product_id"`
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ImageURL    string          `json:"image_url"`
}

// OrderDraft is the client-held order under construction. It is never
// persisted here; it is submitted wholesale to the Order Service.
type OrderDraft struct {
	BuyerName       string          `json:"buyer_name"`
	SellerID        int64           `json:"seller_id"`
	SellerUsername  string          `json:"seller_username"`
	ShippingMethod  string          `json:"shipping_method"`
	ShippingAddress string          `json:"shipping_address"`
	ContactNumber   string          `json:"contact_number"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Items           []OrderLineItem `json:"order_items"`
}

// Total sums the draft's line-item subtotals.
func (d OrderDraft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Order is the persisted order as returned by the Order Service.
type Order struct {
	ID              int64           `json:"id"`
	BuyerID         int64           `json:"buyer_id"`
	BuyerName       string          `json:"buyer_name"`
	SellerID        int64           `json:"seller_id"`
	SellerUsername  string          `json:"seller_username"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	ShippingMethod  string          `json:"shipping_method"`
	ShippingAddress string          `json:"shipping_address"`
	ContactNumber   string          `json:"contact_number"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderLineItem `json:"order_items"`
}
