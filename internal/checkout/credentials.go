package checkout

import (
	"encoding/json"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// PaymentDetails carries the provider choice and the provider-shaped
// credential fields collected at checkout. The Payment Service is the sole
// interpreter of the serialized payload.
type PaymentDetails struct {
	Provider models.PaymentProvider `json:"provider"`

	// GCash
	GCashNumber string `json:"gcash_number,omitempty"`
	GCashPIN    string `json:"gcash_pin,omitempty"`

	// PayMaya
	PayMayaEmail string `json:"paymaya_email,omitempty"`
	PayMayaOTP   string `json:"paymaya_otp,omitempty"`

	// CreditCard
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVV    string `json:"card_cvv,omitempty"`
}

type gcashCredentials struct {
	Number string `json:"number"`
	PIN    string `json:"pin"`
}

type paymayaCredentials struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type cardCredentials struct {
	Card   string `json:"card"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// EncodeCredentials serializes the provider-shaped fields into the single
// opaque string the verify mutation expects.
func (d *PaymentDetails) EncodeCredentials() (string, error) {
	var payload interface{}
	switch d.Provider {
	case models.ProviderGCash:
		payload = gcashCredentials{Number: d.GCashNumber, PIN: d.GCashPIN}
	case models.ProviderPayMaya:
		payload = paymayaCredentials{Email: d.PayMayaEmail, OTP: d.PayMayaOTP}
	case models.ProviderCreditCard:
		payload = cardCredentials{Card: d.CardNumber, Expiry: d.CardExpiry, CVV: d.CardCVV}
	default:
		return "", apperrors.NewValidationError("payment_provider", "unknown payment provider")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
