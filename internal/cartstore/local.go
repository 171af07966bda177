package cartstore

import (
	"context"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/models"
)

// Local is a Backend that calls the cart service in-process. The identity
// must already be on the context passed to the store.
type Local struct {
	Service *cart.Service
}

func (l Local) ListCart(ctx context.Context) ([]models.CartItemWithProduct, error) {
	return l.Service.List(ctx)
}

func (l Local) AddToCart(ctx context.Context, productID int64, quantity int) (string, error) {
	_, msg, err := l.Service.AddToCart(ctx, productID, quantity)
	return msg, err
}

func (l Local) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) (string, error) {
	return l.Service.UpdateCartItemQuantity(ctx, itemID, quantity)
}

func (l Local) RemoveFromCart(ctx context.Context, itemID int64) (string, error) {
	return l.Service.RemoveFromCart(ctx, itemID)
}

func (l Local) ClearCart(ctx context.Context) error {
	_, err := l.Service.ClearCart(ctx)
	return err
}
