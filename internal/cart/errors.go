package cart

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidProduct     = errors.New("product id is required")
	ErrRestaurantMismatch = errors.New("cart already holds items from another restaurant")
)

// RestaurantMismatchError is returned by AddItem under PolicyReject.
type RestaurantMismatchError struct {
	Current  int64
	Incoming int64
}

func (e *RestaurantMismatchError) Error() string {
	return fmt.Sprintf("cart holds items from restaurant %d, cannot add product from restaurant %d", e.Current, e.Incoming)
}

func (e *RestaurantMismatchError) Is(target error) bool {
	return target == ErrRestaurantMismatch
}
