package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrMissingRestaurant    = errors.New("restaurant could not be resolved from the cart")
	ErrMissingPaymentMethod = errors.New("payment method is required")
)

// OrderCreationFailedError means no order exists upstream. Status is 0 when
// the request never got an HTTP response.
type OrderCreationFailedError struct {
	Status  int
	Message string
	Err     error
}

func (e *OrderCreationFailedError) Error() string {
	return fmt.Sprintf("order creation failed (status %d): %s", e.Status, e.Message)
}

func (e *OrderCreationFailedError) Unwrap() error {
	return e.Err
}

// OrderUnconfirmedError means the upstream answered the order request with
// success but gave back no usable order id. An order may exist, so no
// payment is attempted and the cart is kept.
type OrderUnconfirmedError struct {
	Status  int
	Message string
	Err     error
}

func (e *OrderUnconfirmedError) Error() string {
	return fmt.Sprintf("order creation unconfirmed (status %d): %s", e.Status, e.Message)
}

func (e *OrderUnconfirmedError) Unwrap() error {
	return e.Err
}

// PaymentFailedAfterOrderCreatedError means the order exists upstream but
// its payment was not recorded. The order is not cancelled.
type PaymentFailedAfterOrderCreatedError struct {
	OrderID     int64
	TotalAmount float64
	Status      int
	Message     string
	Err         error
}

func (e *PaymentFailedAfterOrderCreatedError) Error() string {
	return fmt.Sprintf("order %d was created but payment failed (status %d): %s", e.OrderID, e.Status, e.Message)
}

func (e *PaymentFailedAfterOrderCreatedError) Unwrap() error {
	return e.Err
}
