package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment lifecycle state as owned by the Payment Service.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentProvider identifies the online payment provider.
type PaymentProvider string

const (
	ProviderGCash      PaymentProvider = "GCash"
	ProviderPayMaya    PaymentProvider = "PayMaya"
	ProviderCreditCard PaymentProvider = "CreditCard"
)

// Payment is a payment record linked to exactly one order.
type Payment struct {
	ID                   int64           `json:"id"`
	OrderID              int64           `json:"orderId"`
	UserID               int64           `json:"userId"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	PaymentMethod        PaymentMethod   `json:"paymentMethod"`
	PaymentProvider      PaymentProvider `json:"paymentProvider"`
	PaymentStatus        PaymentStatus   `json:"paymentStatus"`
	TransactionReference string          `json:"transactionReference"`
	PaidAt               *time.Time      `json:"paidAt"`
}

// PaymentConfirmation is the result of a verify call.
type PaymentConfirmation struct {
	ID            int64         `json:"id"`
	OrderID       int64         `json:"orderId"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaidAt        *time.Time    `json:"paidAt"`
}
