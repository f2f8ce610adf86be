package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a missing resource on an external collaborator.
var ErrNotFound = errors.New("not found")

// ValidationError is a request problem caught before any network call.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// OrderCreationError means order submission failed. Nothing was committed,
// so the whole checkout aborts with no side effects to undo.
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// PaymentVerificationError means the order exists but its payment was not
// confirmed. It is reported, not fatal: no compensating cancel is issued and
// the buyer retries payment separately.
type PaymentVerificationError struct {
	OrderID int64
	Err     error
}

func (e *PaymentVerificationError) Error() string {
	return fmt.Sprintf("payment verification failed for order %d: %v", e.OrderID, e.Err)
}

func (e *PaymentVerificationError) Unwrap() error { return e.Err }

// CartWarning records a best-effort cart removal that failed after the
// checkout itself committed. The cart self-heals on the next fetch.
type CartWarning struct {
	CartItemID int64
	Err        error
}

func (w *CartWarning) Error() string {
	return fmt.Sprintf("cart item %d not removed: %v", w.CartItemID, w.Err)
}

func (w *CartWarning) Unwrap() error { return w.Err }
