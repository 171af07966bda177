package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/repository"
)

var (
	_ repository.ProductRepository = (*Products)(nil)
	_ repository.CartRepository    = (*Carts)(nil)
	_ repository.UserRepository    = (*Users)(nil)
)

func TestCartsListNewestFirst(t *testing.T) {
	db := NewDB()
	db.SeedProduct(1, "Mug", 5)
	db.SeedProduct(2, "Tee", 10)
	carts := db.Carts()
	ctx := context.Background()

	_, err := carts.Upsert(ctx, 1, 1, 1)
	require.NoError(t, err)
	_, err = carts.Upsert(ctx, 1, 2, 1)
	require.NoError(t, err)

	items, err := carts.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, "Tee", items[0].Product.Name)
}

func TestClockAdvances(t *testing.T) {
	db := NewDB()
	a, b := db.clock.Now(), db.clock.Now()
	assert.True(t, b.After(a))
}

func TestFailNextIsOneShot(t *testing.T) {
	db := NewDB()
	db.Fail(apperr.Backend("boom", assert.AnError))

	_, err := db.Products().List(context.Background())
	assert.ErrorIs(t, err, apperr.ErrBackend)
	_, err = db.Products().List(context.Background())
	assert.NoError(t, err)
}
