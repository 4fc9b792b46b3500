package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fifilen/foodapp/internal/cart"
	"github.com/fifilen/foodapp/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxQuantity = 99

type CartRegistry interface {
	Cart(ctx context.Context, userID string) (*cart.Store, error)
	Save(ctx context.Context, userID string) error
	Persist(ctx context.Context, userID string, store *cart.Store) error
}

type CartRecorder interface {
	CartMutation(operation string, err error)
}

type CartHandler struct {
	carts    CartRegistry
	recorder CartRecorder
	logger   *zap.Logger
	timeout  time.Duration
}

func NewCartHandler(carts CartRegistry, recorder CartRecorder, logger *zap.Logger, timeout time.Duration) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		carts:    carts,
		recorder: recorder,
		logger:   logger,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RestaurantID int64           `json:"restaurant_id"`
	ImageURL     string          `json:"image_url"`
	Quantity     int             `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userCart(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, store.Snapshot())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	if req.UnitPrice.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_price", "unit_price must not be negative")
		return
	}

	store, ok := h.userCart(w, r)
	if !ok {
		return
	}

	err := store.AddItem(domain.Product{
		ID:           req.ProductID,
		Name:         req.Name,
		UnitPrice:    req.UnitPrice,
		RestaurantID: req.RestaurantID,
		ImageURL:     req.ImageURL,
	}, req.Quantity)
	h.record("add_item", err)
	if err != nil {
		handleCartError(w, err)
		return
	}

	h.save(r)
	respondJSON(w, http.StatusCreated, store.Snapshot())
}

// PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// zero removes the line
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	store, ok := h.userCart(w, r)
	if !ok {
		return
	}

	err := store.UpdateQuantity(productID, req.Quantity)
	h.record("update_quantity", err)
	if err != nil {
		handleCartError(w, err)
		return
	}

	h.save(r)
	respondJSON(w, http.StatusOK, store.Snapshot())
}

// DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	store, ok := h.userCart(w, r)
	if !ok {
		return
	}

	store.RemoveItem(productID)
	h.record("remove_item", nil)
	h.save(r)
	respondJSON(w, http.StatusOK, store.Snapshot())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userCart(w, r)
	if !ok {
		return
	}

	store.Clear()
	h.record("clear", nil)
	h.save(r)
	respondJSON(w, http.StatusOK, store.Snapshot())
}

func (h *CartHandler) userCart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}

	store, err := h.carts.Cart(ctx, userID)
	if err != nil {
		h.logger.Error("failed to load cart", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return nil, false
	}
	return store, true
}

// save writes the cart through to the cache. A failed write is logged only;
// the in-memory cart is already updated.
func (h *CartHandler) save(r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if err := h.carts.Save(ctx, userID); err != nil {
		h.logger.Warn("failed to persist cart", zap.String("user_id", userID), zap.Error(err))
	}
}

func (h *CartHandler) record(operation string, err error) {
	if h.recorder != nil {
		h.recorder.CartMutation(operation, err)
	}
}

func handleCartError(w http.ResponseWriter, err error) {
	var mismatch *cart.RestaurantMismatchError
	switch {
	case errors.As(err, &mismatch):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "cart holds items from another restaurant",
			Code:    "restaurant_mismatch",
			Details: mismatch.Error(),
		})
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
