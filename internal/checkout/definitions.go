package checkout

import (
	"context"

	"github.com/fifilen/foodapp/internal/domain"
)

// OrderAPI is the part of the upstream API the orchestrator drives.
type OrderAPI interface {
	CreateOrder(ctx context.Context, token, idempotencyKey string, req *domain.CreateOrderRequest) (*domain.Order, error)
	CreatePayment(ctx context.Context, token string, req *domain.CreatePaymentRequest) (*domain.Payment, error)
}

// Cart is what PlaceOrder needs from a cart store.
type Cart interface {
	Snapshot() domain.CartSnapshot
	Clear()
}

// PersistentCart is a Cart backed by shared storage. Persist writes the
// cart's current contents through, so a cleared cart stays cleared for other
// replicas and after a restart.
type PersistentCart interface {
	Cart
	Persist(ctx context.Context) error
}

type Journal interface {
	Begin(ctx context.Context, userID string, snapshot domain.CartSnapshot, idempotencyKey string) (string, error)
	MarkOrderCreated(ctx context.Context, id string, orderID int64, total float64) error
	MarkFailed(ctx context.Context, id string, status domain.CheckoutStatus, reason string) error
	MarkCompleted(ctx context.Context, id string) error
}

type Recorder interface {
	CheckoutOutcome(outcome string)
}

type Request struct {
	UserID string
	Token  string
	// RestaurantID overrides the cart's restaurant when non-zero.
	RestaurantID      int64
	DeliveryAddressID *int64
	PaymentMethod     string
}

type Result struct {
	CheckoutID  string  `json:"checkout_id,omitempty"`
	OrderID     int64   `json:"order_id"`
	PaymentID   int64   `json:"payment_id"`
	TotalAmount float64 `json:"total_amount"`
}

const (
	OutcomeCompleted            = "completed"
	OutcomeEmptyCart            = "empty_cart"
	OutcomeMissingRestaurant    = "missing_restaurant"
	OutcomeMissingPaymentMethod = "missing_payment_method"
	OutcomeOrderFailed          = "order_failed"
	OutcomeOrderUnconfirmed     = "order_unconfirmed"
	OutcomePaymentFailed        = "payment_failed"
)
