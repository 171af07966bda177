package models

import (
	"time"

	"github.com/01moynul/storefront-golang/internal/money"
)

// CartItem defines the struct for the 'cart_items' table.
// There is at most one row per (UserID, ProductID).
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItemWithProduct is a cart row joined with its product at read time.
type CartItemWithProduct struct {
	CartItem
	Product Product `json:"product"`
}

// LineTotal is the product price times the quantity.
func (i CartItemWithProduct) LineTotal() money.Price {
	return i.Product.Price.Mul(i.Quantity)
}
