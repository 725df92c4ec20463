package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"wheelstore/internal/cache"
	"wheelstore/internal/database"
	"wheelstore/internal/models"

	"golang.org/x/sync/singleflight"
)

// CartService owns the server-side cart rules. The database is the source
// of truth; the cache entry for a user is dropped after every mutation.
type CartService struct {
	db    database.DBInterface
	cache cache.CartCache
	sfg   singleflight.Group // collapses concurrent reads of the same cart
}

func NewCartService(db database.DBInterface, cartCache cache.CartCache) *CartService {
	return &CartService{
		db:    db,
		cache: cartCache,
	}
}

// GetCart returns the user's cart lines, serving from cache when possible.
func (cs *CartService) GetCart(ctx context.Context, userID int) ([]models.CartItem, error) {
	v, err, _ := cs.sfg.Do(strconv.Itoa(userID), func() (interface{}, error) {
		items, err := cs.cache.Get(ctx, userID)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("CartService.GetCart - cache get error: %v", err)
		}

		items, err = cs.db.GetCartItems(userID)
		if err != nil {
			return nil, err
		}

		if err := cs.cache.Set(ctx, userID, items); err != nil {
			log.Printf("CartService.GetCart - cache set error: %v", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.CartItem), nil
}

// AddToCart inserts or increments the line for productID, then invalidates
// the cached cart.
func (cs *CartService) AddToCart(userID, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	if err := cs.db.AddToCart(userID, productID, quantity); err != nil {
		log.Printf("CartService.AddToCart - UserID: %d, ProductID: %d: %v", userID, productID, err)
		return err
	}
	cs.invalidate(userID)
	return nil
}

// UpdateItem sets the quantity of one cart line.
func (cs *CartService) UpdateItem(userID, itemID, quantity int) error {
	if err := cs.db.UpdateCartItem(userID, itemID, quantity); err != nil {
		log.Printf("CartService.UpdateItem - UserID: %d, ItemID: %d: %v", userID, itemID, err)
		return err
	}
	cs.invalidate(userID)
	return nil
}

// RemoveItem deletes one cart line.
func (cs *CartService) RemoveItem(userID, itemID int) error {
	if err := cs.db.RemoveFromCart(userID, itemID); err != nil {
		log.Printf("CartService.RemoveItem - UserID: %d, ItemID: %d: %v", userID, itemID, err)
		return err
	}
	cs.invalidate(userID)
	return nil
}

// Clear removes every line in the user's cart.
func (cs *CartService) Clear(userID int) error {
	if err := cs.db.ClearCart(userID); err != nil {
		log.Printf("CartService.Clear - UserID: %d: %v", userID, err)
		return err
	}
	cs.invalidate(userID)
	return nil
}

// Checkout turns the cart into an order and empties it. The cache entry is
// dropped so the next read sees the empty cart.
func (cs *CartService) Checkout(userID int, form models.OrderForm) (*models.Order, error) {
	order, err := cs.db.CreateOrder(userID, form)
	if err != nil {
		return nil, err
	}
	log.Printf("CartService.Checkout - UserID: %d, OrderNumber: %s, Total: %.2f", userID, order.OrderNumber, order.TotalPrice)
	cs.invalidate(userID)
	return order, nil
}

func (cs *CartService) invalidate(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cs.cache.Delete(ctx, userID); err != nil {
		log.Printf("CartService.invalidate - UserID: %d: %v", userID, err)
	}
}
