package models

import "time"

// Order is created from the cart at checkout; the cart is cleared in the
// same transaction.
type Order struct {
	ID            int         `json:"id"`
	UserID        int         `json:"user_id"`
	OrderNumber   string      `json:"order_number"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	TotalPrice    float64     `json:"total_price"`
	Status        string      `json:"status"` // "pending", "confirmed", "shipped", "cancelled"
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem snapshots a cart line at order time. Name and price are copied
// so later product edits do not rewrite order history.
type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderForm carries the checkout contact payload.
type OrderForm struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}
