package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelstore/internal/cache"
	"wheelstore/internal/database"
	"wheelstore/internal/models"
)

func newTestCartService(t *testing.T) (*CartService, *database.JSONDatabase) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCartService(db, cache.NewRedisCache(client)), db
}

func TestCartServiceServesFromCache(t *testing.T) {
	cs, db := newTestCartService(t)
	ctx := context.Background()

	require.NoError(t, cs.AddToCart(7, 1, 1))

	items, err := cs.GetCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// A write that bypasses the service is invisible until invalidation.
	require.NoError(t, db.AddToCart(7, 2, 1))
	items, err = cs.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartServiceInvalidatesAfterMutation(t *testing.T) {
	cs, _ := newTestCartService(t)
	ctx := context.Background()

	require.NoError(t, cs.AddToCart(7, 1, 1))
	_, err := cs.GetCart(ctx, 7) // warm the cache
	require.NoError(t, err)

	require.NoError(t, cs.AddToCart(7, 2, 2))
	items, err := cs.GetCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)

	itemID := items[1].ID
	require.NoError(t, cs.UpdateItem(7, itemID, 5))
	items, err = cs.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, items[1].Quantity)

	require.NoError(t, cs.RemoveItem(7, itemID))
	items, err = cs.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, cs.Clear(7))
	items, err = cs.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartServiceRejectsInvalidQuantity(t *testing.T) {
	cs, _ := newTestCartService(t)
	assert.Error(t, cs.AddToCart(7, 1, 0))
	assert.Error(t, cs.AddToCart(7, 1, -3))
}

func TestCartServicePropagatesNotFound(t *testing.T) {
	cs, _ := newTestCartService(t)
	assert.ErrorIs(t, cs.AddToCart(7, 999, 1), database.ErrNotFound)
	assert.ErrorIs(t, cs.UpdateItem(7, 999, 1), database.ErrNotFound)
	assert.ErrorIs(t, cs.RemoveItem(7, 999), database.ErrNotFound)
}

func TestCartServiceCheckout(t *testing.T) {
	cs, _ := newTestCartService(t)
	ctx := context.Background()

	require.NoError(t, cs.AddToCart(7, 1, 2))
	_, err := cs.GetCart(ctx, 7) // warm the cache
	require.NoError(t, err)

	form := models.OrderForm{
		CustomerName:  "Ada Shopper",
		CustomerEmail: "ada@example.com",
		Phone:         "+49 170 1234567",
		Address:       "Wheelstrasse 1, Berlin",
	}
	order, err := cs.Checkout(7, form)
	require.NoError(t, err)
	assert.InDelta(t, 39.98, order.TotalPrice, 0.001)

	// The cached cart was dropped along with the checkout.
	items, err := cs.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartServiceCheckoutEmptyCart(t *testing.T) {
	cs, _ := newTestCartService(t)
	_, err := cs.Checkout(7, models.OrderForm{CustomerName: "Ada"})
	assert.ErrorIs(t, err, database.ErrEmptyCart)
}
