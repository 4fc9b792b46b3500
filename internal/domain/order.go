package domain

// Order is the created order as returned by the upstream API.
type Order struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurantId"`
	TotalAmount  float64 `json:"totalAmount"`
	Status       string  `json:"status,omitempty"`
}

type OrderItemRequest struct {
	ProductID         string  `json:"productId"`
	Quantity          int     `json:"quantity"`
	ExpectedUnitPrice float64 `json:"expectedUnitPrice"`
}

// CreateOrderRequest mirrors the upstream order DTO. ExpectedUnitPrice is only
// a hint for server-side verification, the server price is authoritative.
type CreateOrderRequest struct {
	RestaurantID      int64              `json:"restaurantId"`
	DeliveryAddressID *int64             `json:"deliveryAddressId"`
	OrderItems        []OrderItemRequest `json:"orderItems"`
}

type Payment struct {
	ID            int64  `json:"id"`
	OrderID       int64  `json:"orderId"`
	PaymentMethod string `json:"paymentMethod"`
	Status        string `json:"status,omitempty"`
}

type CreatePaymentRequest struct {
	OrderID       int64  `json:"orderId"`
	PaymentMethod string `json:"paymentMethod"`
}

type Favorite struct {
	ID           int64 `json:"id,omitempty"`
	RestaurantID int64 `json:"restaurantId"`
}
