package models

import "time"

// Product represents a wheel in the store catalog. Products are created and
// edited through the admin API only; the storefront never mutates them.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Type        string    `json:"type"`
	Image       string    `json:"image"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductForm carries the admin product create/update payload.
type ProductForm struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Type        string  `json:"type" binding:"required"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}
