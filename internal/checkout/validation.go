package checkout

import (
	"github.com/doma-shop/doma-checkout-service/internal/apperrors"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// ValidateRequest checks a single-seller checkout request before any network
// call is made.
func ValidateRequest(req *Request) error {
	if req.Session.UserID == 0 {
		return apperrors.NewValidationError("user_id", "buyer identity is required")
	}

	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items", "at least one item is required")
	}

	for _, item := range req.Items {
		if err := validateItem(&item); err != nil {
			return err
		}
		if item.SellerID != req.SellerID {
			return apperrors.NewValidationError("items", "all items must belong to the same seller")
		}
		if item.SellerUsername != req.SellerUsername {
			return apperrors.NewValidationError("items", "all items must carry the same seller username")
		}
	}

	if req.ShippingAddress == "" {
		return apperrors.NewValidationError("shipping_address", "shipping address is required")
	}
	if req.ContactNumber == "" {
		return apperrors.NewValidationError("contact_number", "contact number is required")
	}

	switch req.PaymentMethod {
	case models.PaymentMethodCOD:
		// No payment details needed.
	case models.PaymentMethodOnline:
		if req.PaymentDetails == nil {
			return apperrors.NewValidationError("payment_details", "payment details are required for online payment")
		}
		if _, err := req.PaymentDetails.EncodeCredentials(); err != nil {
			return err
		}
	default:
		return apperrors.NewValidationError("payment_method", "invalid payment method")
	}

	return nil
}

func validateItem(item *models.CartItem) error {
	if item.ID == 0 {
		return apperrors.NewValidationError("items", "cart item ID is required")
	}
	if item.ProductID == 0 {
		return apperrors.NewValidationError("items", "product ID is required")
	}
	if item.Quantity <= 0 {
		return apperrors.NewValidationError("items", "quantity must be positive")
	}
	if item.Price.IsNegative() {
		return apperrors.NewValidationError("items", "price cannot be negative")
	}
	return nil
}
