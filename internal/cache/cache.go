package cache

import (
	"context"
	"errors"

	"wheelstore/internal/models"
)

// CartCache holds a user's cart lines between reads. Every cart mutation
// deletes the entry; the next read repopulates it from the database.
type CartCache interface {
	Get(ctx context.Context, userID int) ([]models.CartItem, error)
	Set(ctx context.Context, userID int, items []models.CartItem) error
	Delete(ctx context.Context, userID int) error
}

var ErrCacheMiss = errors.New("cache miss")
