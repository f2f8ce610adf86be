package checkout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

func TestEncodeCredentials(t *testing.T) {
	tests := []struct {
		name    string
		details PaymentDetails
		want    map[string]string
	}{
		{
			name: "gcash",
			details: PaymentDetails{
				Provider:    models.ProviderGCash,
				GCashNumber: "09171234567",
				GCashPIN:    "1234",
			},
			want: map[string]string{"number": "09171234567", "pin": "1234"},
		},
		{
			name: "paymaya",
			details: PaymentDetails{
				Provider:     models.ProviderPayMaya,
				PayMayaEmail: "maria@example.com",
				PayMayaOTP:   "000111",
			},
			want: map[string]string{"email": "maria@example.com", "otp": "000111"},
		},
		{
			name: "credit card",
			details: PaymentDetails{
				Provider:   models.ProviderCreditCard,
				CardNumber: "4111111111111111",
				CardExpiry: "12/27",
				CardCVV:    "123",
			},
			want: map[string]string{"card": "4111111111111111", "expiry": "12/27", "cvv": "123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := tt.details.EncodeCredentials()
			require.NoError(t, err)

			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(encoded), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeCredentials_UnknownProvider(t *testing.T) {
	details := PaymentDetails{Provider: "Bitcoin"}

	_, err := details.EncodeCredentials()
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment_provider", verr.Field)
}
