package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type FavoritesService interface {
	Toggle(ctx context.Context, userID, token string, restaurantID int64) (bool, error)
	List(ctx context.Context, userID, token string) ([]int64, error)
}

type FavoritesHandler struct {
	favorites FavoritesService
	timeout   time.Duration
}

func NewFavoritesHandler(favorites FavoritesService, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites,
		timeout:   timeout,
	}
}

type FavoriteResponseDTO struct {
	RestaurantID int64 `json:"restaurant_id"`
	Favorite     bool  `json:"favorite"`
}

// GET /api/v1/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ids, err := h.favorites.List(ctx, userID, getTokenFromContext(r.Context()))
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]int64{"restaurant_ids": ids})
}

// POST /api/v1/favorites/{restaurantId}/toggle
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	restaurantID, err := strconv.ParseInt(chi.URLParam(r, "restaurantId"), 10, 64)
	if err != nil || restaurantID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_restaurant_id", "restaurantId must be a positive integer")
		return
	}

	favorite, err := h.favorites.Toggle(ctx, userID, getTokenFromContext(r.Context()), restaurantID)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, FavoriteResponseDTO{RestaurantID: restaurantID, Favorite: favorite})
}
