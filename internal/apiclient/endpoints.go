package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fifilen/foodapp/internal/domain"
)

const (
	ordersPath    = "/api/Orders"
	paymentsPath  = "/api/Payments"
	favoritesPath = "/api/Favorites"
)

func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, req *domain.CreateOrderRequest) (*domain.Order, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	var order domain.Order
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   ordersPath,
		Body:   req,
		Token:  token,
		Header: header,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CreatePayment(ctx context.Context, token string, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	var payment domain.Payment
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   paymentsPath,
		Body:   req,
		Token:  token,
	}, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) ListFavorites(ctx context.Context, token string) ([]domain.Favorite, error) {
	var favorites []domain.Favorite
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   favoritesPath,
		Token:  token,
	}, &favorites)
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (c *Client) AddFavorite(ctx context.Context, token string, restaurantID int64) error {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   favoritesPath,
		Body:   domain.Favorite{RestaurantID: restaurantID},
		Token:  token,
	}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, token string, restaurantID int64) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%s/%d", favoritesPath, restaurantID),
		Token:  token,
	}, nil)
}
