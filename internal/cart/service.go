// Package cart holds the trusted cart mutation operations. Each one derives
// the caller from the request context and scopes every row access by the
// caller's user id.
package cart

import (
	"context"
	"log"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/events"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/repository"
)

// Messages used for toasts.
const (
	MsgAdded   = "Added to cart"
	MsgUpdated = "Cart updated"
	MsgRemoved = "Item removed from cart"
	MsgCleared = "Cart cleared"
)

// Invalidator is told which of a user's views went stale.
type Invalidator interface {
	Publish(events.Invalidation)
}

// Service implements the cart mutations on top of a CartRepository.
type Service struct {
	Carts       repository.CartRepository
	Invalidator Invalidator
}

// NewService wires a Service. inv may be nil.
func NewService(carts repository.CartRepository, inv Invalidator) *Service {
	return &Service{Carts: carts, Invalidator: inv}
}

// AddResult is the Data of a successful AddToCart.
type AddResult struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Updated   bool  `json:"updated"`
}

// List returns the caller's cart joined with product data, newest first.
func (s *Service) List(ctx context.Context) ([]models.CartItemWithProduct, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}
	return s.Carts.ListByUser(ctx, id.ID)
}

// AddToCart adds quantity units of the product. An existing row is
// incremented, never duplicated. A zero quantity means 1.
func (s *Service) AddToCart(ctx context.Context, productID int64, quantity int) (AddResult, string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return AddResult{}, "", apperr.New(apperr.ErrUnauthenticated, "Please sign in to add items to your cart")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return AddResult{}, "", apperr.New(apperr.ErrValidation, "Quantity must be positive")
	}
	if productID <= 0 {
		return AddResult{}, "", apperr.New(apperr.ErrValidation, "Invalid product")
	}

	existed, err := s.Carts.Upsert(ctx, id.ID, productID, quantity)
	if err != nil {
		return AddResult{}, "", err
	}
	s.invalidate(id.ID, "cart.add")

	msg := MsgAdded
	if existed {
		msg = MsgUpdated
	}
	return AddResult{ProductID: productID, Quantity: quantity, Updated: existed}, msg, nil
}

// UpdateCartItemQuantity sets the row's quantity. A non-positive quantity
// removes the row instead.
func (s *Service) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", apperr.New(apperr.ErrUnauthorized, "Unauthorized")
	}
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}
	if err := s.Carts.UpdateQuantity(ctx, id.ID, itemID, quantity); err != nil {
		return "", err
	}
	s.invalidate(id.ID, "cart.update")
	return MsgUpdated, nil
}

// RemoveFromCart deletes one of the caller's rows.
func (s *Service) RemoveFromCart(ctx context.Context, itemID int64) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", apperr.New(apperr.ErrUnauthorized, "Unauthorized")
	}
	if err := s.Carts.Delete(ctx, id.ID, itemID); err != nil {
		return "", err
	}
	s.invalidate(id.ID, "cart.remove")
	return MsgRemoved, nil
}

// ClearCart deletes all of the caller's rows. Checkout uses it in place of
// creating an order.
func (s *Service) ClearCart(ctx context.Context) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", apperr.New(apperr.ErrUnauthorized, "Unauthorized")
	}
	n, err := s.Carts.DeleteAll(ctx, id.ID)
	if err != nil {
		return "", err
	}
	log.Printf("cart: cleared %d item(s) for user %d", n, id.ID)
	s.invalidate(id.ID, "cart.clear")
	return MsgCleared, nil
}

func (s *Service) invalidate(userID int64, reason string) {
	if s.Invalidator == nil {
		return
	}
	s.Invalidator.Publish(events.Invalidation{
		UserID: userID,
		Paths:  events.CartPaths,
		Reason: reason,
	})
}
