package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fifilen/foodapp/internal/cart"
	"github.com/fifilen/foodapp/internal/checkout"
	"github.com/fifilen/foodapp/internal/journal"
	"go.uber.org/zap"
)

type CheckoutService interface {
	PlaceOrder(ctx context.Context, cart checkout.Cart, req checkout.Request) (*checkout.Result, error)
}

type PendingPayments interface {
	PendingPayments(ctx context.Context, userID string) ([]*journal.Entry, error)
}

type CheckoutHandler struct {
	carts    CartRegistry
	checkout CheckoutService
	pending  PendingPayments
	logger   *zap.Logger
	timeout  time.Duration
}

// NewCheckoutHandler builds the checkout endpoints. pending may be nil, in
// which case no attempts are reported as awaiting payment.
func NewCheckoutHandler(carts CartRegistry, svc CheckoutService, pending PendingPayments, logger *zap.Logger, timeout time.Duration) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		carts:    carts,
		checkout: svc,
		pending:  pending,
		logger:   logger,
		timeout:  timeout,
	}
}

type PlaceOrderRequestDTO struct {
	RestaurantID      int64  `json:"restaurant_id"`
	DeliveryAddressID *int64 `json:"delivery_address_id"`
	PaymentMethod     string `json:"payment_method"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, err := h.carts.Cart(ctx, userID)
	if err != nil {
		h.logger.Error("failed to load cart", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	res, err := h.checkout.PlaceOrder(ctx, &userCart{Store: store, userID: userID, carts: h.carts}, checkout.Request{
		UserID:            userID,
		Token:             getTokenFromContext(r.Context()),
		RestaurantID:      req.RestaurantID,
		DeliveryAddressID: req.DeliveryAddressID,
		PaymentMethod:     req.PaymentMethod,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// GET /api/v1/checkout/pending
func (h *CheckoutHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if h.pending == nil {
		respondJSON(w, http.StatusOK, []*journal.Entry{})
		return
	}

	entries, err := h.pending.PendingPayments(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list pending payments", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list pending payments")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// userCart lets the orchestrator write the exact store it cleared through
// to the cache.
type userCart struct {
	*cart.Store
	userID string
	carts  CartRegistry
}

func (c *userCart) Persist(ctx context.Context) error {
	return c.carts.Persist(ctx, c.userID, c.Store)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var orderFailed *checkout.OrderCreationFailedError
	var unconfirmed *checkout.OrderUnconfirmedError
	var paymentFailed *checkout.PaymentFailedAfterOrderCreatedError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrMissingRestaurant):
		respondError(w, http.StatusBadRequest, "missing_restaurant", err.Error())
	case errors.Is(err, checkout.ErrMissingPaymentMethod):
		respondError(w, http.StatusBadRequest, "missing_payment_method", err.Error())
	case errors.As(err, &paymentFailed):
		respondJSON(w, http.StatusPaymentRequired, ErrorResponse{
			Error:   "order was created but payment failed",
			Code:    "payment_failed_after_order_created",
			Details: paymentFailed.Message,
			OrderID: paymentFailed.OrderID,
		})
	case errors.As(err, &unconfirmed):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "order status unknown, check your orders before retrying",
			Code:    "order_unconfirmed",
			Details: unconfirmed.Message,
		})
	case errors.As(err, &orderFailed):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "order could not be created",
			Code:    "order_creation_failed",
			Details: orderFailed.Message,
		})
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
