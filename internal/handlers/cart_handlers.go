package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/pricing"
)

//
// --- Cart Handlers ---
//

// CartResponse is the body of GET /v1/cart.
type CartResponse struct {
	Items     []models.CartItemWithProduct `json:"items"`
	Totals    pricing.Totals               `json:"totals"`
	ItemCount int                          `json:"itemCount"`
}

// GetCart is the handler for GET /v1/cart
// Anonymous visitors get an empty cart rather than an error.
func (h *Handlers) GetCart(c *gin.Context) {
	items, err := h.Cart.List(c.Request.Context())
	if errors.Is(err, apperr.ErrUnauthenticated) {
		items, err = []models.CartItemWithProduct{}, nil
	}
	if err != nil {
		respondError(c, err)
		return
	}

	totals := pricing.Checkout(items, h.Rates)
	c.JSON(http.StatusOK, CartResponse{Items: items, Totals: totals, ItemCount: totals.ItemCount})
}

// AddToCartInput defines the JSON for adding an item to the cart.
// Quantity may be omitted and defaults to 1.
type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"omitempty,gt=0"`
}

// AddToCart is the handler for POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondResult(c, 0, "", nil, bindError(err))
		return
	}

	res, msg, err := h.Cart.AddToCart(c.Request.Context(), input.ProductID, input.Quantity)
	status := http.StatusCreated
	if res.Updated {
		status = http.StatusOK
	}
	respondResult(c, status, msg, res, err)
}

// UpdateCartItemInput defines the JSON for updating an item's quantity.
// A quantity of 0 (or less) removes the item.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		respondResult(c, 0, "", nil, err)
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondResult(c, 0, "", nil, bindError(err))
		return
	}

	msg, err := h.Cart.UpdateCartItemQuantity(c.Request.Context(), itemID, *input.Quantity)
	respondResult(c, http.StatusOK, msg, nil, err)
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		respondResult(c, 0, "", nil, err)
		return
	}

	msg, err := h.Cart.RemoveFromCart(c.Request.Context(), itemID)
	respondResult(c, http.StatusOK, msg, nil, err)
}

// ClearCart is the handler for DELETE /v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	msg, err := h.Cart.ClearCart(c.Request.Context())
	respondResult(c, http.StatusOK, msg, nil, err)
}
