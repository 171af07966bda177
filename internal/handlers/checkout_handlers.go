package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-golang/internal/checkout"
	"github.com/01moynul/storefront-golang/internal/pricing"
)

//
// --- Checkout Handlers ---
//

// redirectEmptyCart answers 303 See Other pointing at the product listing.
// The body repeats the target for clients that don't follow redirects.
func redirectEmptyCart(c *gin.Context) {
	c.Header("Location", checkout.ProductsPath)
	c.JSON(http.StatusSeeOther, gin.H{
		"error":    "Your cart is empty",
		"redirect": checkout.ProductsPath,
	})
}

// GetCheckout is the handler for GET /v1/checkout
// It returns the order summary, or redirects when there is nothing to buy.
func (h *Handlers) GetCheckout(c *gin.Context) {
	items, err := h.Cart.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(items) == 0 {
		redirectEmptyCart(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"totals": pricing.Checkout(items, h.Rates),
	})
}

// ConfirmCheckout is the handler for POST /v1/checkout/confirm
// There is no payment step and no order record: confirming empties the cart
// and sends the user to the success page.
func (h *Handlers) ConfirmCheckout(c *gin.Context) {
	// 1. --- Bind & Validate Shipping Form ---
	var form checkout.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, bindError(err))
		return
	}

	// 2. --- Load Cart ---
	ctx := c.Request.Context()
	items, err := h.Cart.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(items) == 0 {
		redirectEmptyCart(c)
		return
	}
	totals := pricing.Checkout(items, h.Rates)

	// 3. --- Clear the Cart ---
	msg, err := h.Cart.ClearCart(ctx)
	if err != nil {
		respondResult(c, 0, "", nil, err)
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  msg,
		"redirect": checkout.SuccessPath,
		"totals":   totals,
	})
}
