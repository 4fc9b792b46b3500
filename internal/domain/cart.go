package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is what a menu screen hands to the cart.
type Product struct {
	ID           string          `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RestaurantID int64           `json:"restaurant_id"`
	ImageURL     string          `json:"image_url,omitempty"`
}

// CartLine is one product in the cart. Quantity is always >= 1.
type CartLine struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	RestaurantID int64           `json:"restaurant_id"`
	ImageURL     string          `json:"image_url,omitempty"`
	AddedAt      time.Time       `json:"added_at"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot represents the full cart state at a point in time
type CartSnapshot struct {
	Lines        []CartLine      `json:"lines"`
	RestaurantID int64           `json:"restaurant_id"`
	ItemCount    int             `json:"item_count"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CapturedAt   time.Time       `json:"captured_at"`
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
