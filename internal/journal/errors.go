package journal

import "errors"

var (
	ErrCheckoutNotFound  = errors.New("checkout not found")
	ErrDuplicateKey      = errors.New("idempotency key already journaled")
	ErrIllegalTransition = errors.New("illegal checkout status transition")
)
