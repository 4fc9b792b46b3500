package domain

type CheckoutStatus string

const (
	CheckoutStatusInitiated     CheckoutStatus = "INITIATED"
	CheckoutStatusOrderCreated  CheckoutStatus = "ORDER_CREATED"
	CheckoutStatusCompleted     CheckoutStatus = "COMPLETED"
	CheckoutStatusOrderFailed   CheckoutStatus = "ORDER_FAILED"
	CheckoutStatusPaymentFailed CheckoutStatus = "PAYMENT_FAILED"
	// The upstream accepted the order request but its response carried no
	// usable order id. An order may or may not exist.
	CheckoutStatusOrderUnconfirmed CheckoutStatus = "ORDER_UNCONFIRMED"
)

var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusInitiated:    {CheckoutStatusOrderCreated, CheckoutStatusOrderFailed, CheckoutStatusOrderUnconfirmed},
	CheckoutStatusOrderCreated: {CheckoutStatusCompleted, CheckoutStatusPaymentFailed},
}

func (s CheckoutStatus) IsTerminal() bool {
	switch s {
	case CheckoutStatusCompleted, CheckoutStatusOrderFailed, CheckoutStatusPaymentFailed, CheckoutStatusOrderUnconfirmed:
		return true
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
