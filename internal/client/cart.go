package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"wheelstore/internal/models"
)

// CartStore mirrors the server-side cart. The server is the sole source of
// truth: every successful mutation is followed by a reload, and a failed
// mutation leaves the local copy at the last successful fetch.
type CartStore struct {
	api     *API
	confirm Confirmer
	notify  Notifier
	items   []models.CartItem
}

func NewCartStore(api *API, confirm Confirmer, notify Notifier) *CartStore {
	return &CartStore{api: api, confirm: confirm, notify: notify}
}

// Items returns a copy of the current cart lines.
func (s *CartStore) Items() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the total quantity across all lines.
func (s *CartStore) Count() int { return models.CartCount(s.items) }

// Total is Σ price × quantity.
func (s *CartStore) Total() float64 { return models.CartTotal(s.items) }

// TotalLabel formats the total the way the cart badge shows it.
func (s *CartStore) TotalLabel() string { return fmt.Sprintf("€%.2f", s.Total()) }

// Load refetches the cart. On ErrUnauthenticated the local copy empties
// and the caller redirects to login; on any other failure the last good
// copy is kept.
func (s *CartStore) Load(ctx context.Context) error {
	var items []models.CartItem
	err := s.api.do(ctx, http.MethodGet, "/api/cart", nil, &items)
	if errors.Is(err, ErrUnauthenticated) {
		s.items = nil
		return err
	}
	if err != nil {
		return err
	}
	s.items = items
	return nil
}

func (s *CartStore) findLine(itemID int) *models.CartItem {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return &s.items[i]
		}
	}
	return nil
}

func (s *CartStore) findProduct(productID int) *models.CartItem {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return &s.items[i]
		}
	}
	return nil
}

// Add puts one unit of the product in the cart. The server collapses a
// duplicate product into the existing line.
func (s *CartStore) Add(ctx context.Context, productID int) error {
	existing := s.findProduct(productID)

	payload := map[string]int{"product_id": productID, "quantity": 1}
	if err := s.api.do(ctx, http.MethodPost, "/api/cart", payload, nil); err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			s.notify.Error(userMessage(err))
		}
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}

	if line := s.findProduct(productID); line != nil {
		if existing != nil {
			s.notify.Info(fmt.Sprintf("%s quantity updated (x%d)", line.Product.Name, line.Quantity))
		} else {
			s.notify.Success(fmt.Sprintf("%s added to cart!", line.Product.Name))
		}
	}
	return nil
}

// Increase bumps a line's quantity by one; no upper bound is enforced.
func (s *CartStore) Increase(ctx context.Context, itemID int) error {
	line := s.findLine(itemID)
	if line == nil {
		return fmt.Errorf("cart item %d not in cart", itemID)
	}

	payload := map[string]int{"quantity": line.Quantity + 1}
	if err := s.api.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/%d", itemID), payload, nil); err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			s.notify.Error(userMessage(err))
		}
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.notify.Success("Quantity updated")
	return nil
}

// Decrease lowers a line's quantity by one. At quantity 1 the line can
// only be removed, and only after confirmation; a line never persists at
// quantity 0.
func (s *CartStore) Decrease(ctx context.Context, itemID int) error {
	line := s.findLine(itemID)
	if line == nil {
		return fmt.Errorf("cart item %d not in cart", itemID)
	}

	if line.Quantity > 1 {
		payload := map[string]int{"quantity": line.Quantity - 1}
		if err := s.api.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/%d", itemID), payload, nil); err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				s.notify.Error(userMessage(err))
			}
			return err
		}
		if err := s.Load(ctx); err != nil {
			return err
		}
		s.notify.Success("Quantity updated")
		return nil
	}

	prompt := fmt.Sprintf("Quantity is 1. Do you want to remove %q from the cart?", line.Product.Name)
	if !s.confirm.Confirm(prompt) {
		return nil
	}
	return s.deleteLine(ctx, itemID, line.Product.Name)
}

// Remove deletes a line after confirmation.
func (s *CartStore) Remove(ctx context.Context, itemID int) error {
	line := s.findLine(itemID)
	if line == nil {
		return fmt.Errorf("cart item %d not in cart", itemID)
	}

	prompt := fmt.Sprintf("Are you sure you want to remove %q from the cart?", line.Product.Name)
	if !s.confirm.Confirm(prompt) {
		return nil
	}
	return s.deleteLine(ctx, itemID, line.Product.Name)
}

func (s *CartStore) deleteLine(ctx context.Context, itemID int, name string) error {
	if err := s.api.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", itemID), nil, nil); err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			s.notify.Error(userMessage(err))
		}
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.notify.Success(fmt.Sprintf("%q was removed from your cart.", name))
	return nil
}

// Clear empties the cart after confirmation. An already empty cart is an
// informational no-op, not an error.
func (s *CartStore) Clear(ctx context.Context) error {
	if len(s.items) == 0 {
		s.notify.Info("Cart is already empty!")
		return nil
	}

	if !s.confirm.Confirm("Clear cart? All items will be removed. This action cannot be undone.") {
		return nil
	}

	if err := s.api.do(ctx, http.MethodDelete, "/api/cart", nil, nil); err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			s.notify.Error(userMessage(err))
		}
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.notify.Success("Your cart has been emptied.")
	return nil
}
