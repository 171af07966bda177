// Package pricing derives cart and checkout totals from joined cart items.
// Everything here is pure; amounts are money.Price values.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/money"
)

// Rates are the fixed checkout parameters.
type Rates struct {
	Shipping money.Price
	TaxRate  decimal.Decimal
}

// DefaultRates is the storefront's flat shipping and sales tax.
var DefaultRates = Rates{
	Shipping: money.MustParse("10.00"),
	TaxRate:  decimal.RequireFromString("0.085"),
}

// Totals is the order summary shown at checkout. Nothing is persisted.
type Totals struct {
	Subtotal  money.Price `json:"subtotal"`
	Shipping  money.Price `json:"shipping"`
	Tax       money.Price `json:"tax"`
	Discount  money.Price `json:"discount"`
	Total     money.Price `json:"total"`
	ItemCount int         `json:"itemCount"`
}

// LineTotal is price × quantity for one item.
func LineTotal(item models.CartItemWithProduct) money.Price {
	return item.LineTotal()
}

// Subtotal sums the line totals.
func Subtotal(items []models.CartItemWithProduct) money.Price {
	sum := money.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// ItemCount sums quantities, which is what the header badge shows.
func ItemCount(items []models.CartItemWithProduct) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// Tax is subtotal × rate, rounded half-up to cents.
func Tax(subtotal money.Price, rate decimal.Decimal) money.Price {
	return money.NewPrice(subtotal.Decimal.Mul(rate))
}

// Checkout computes the full order summary. An empty cart costs nothing,
// shipping included. Discount is always zero: promo codes are not supported.
func Checkout(items []models.CartItemWithProduct, rates Rates) Totals {
	t := Totals{
		Subtotal:  Subtotal(items),
		Shipping:  money.Zero,
		Tax:       money.Zero,
		Discount:  money.Zero,
		ItemCount: ItemCount(items),
	}
	if len(items) == 0 {
		t.Total = money.Zero
		return t
	}
	t.Shipping = rates.Shipping
	t.Tax = Tax(t.Subtotal, rates.TaxRate)
	t.Total = money.NewPrice(t.Subtotal.Decimal.Add(t.Shipping.Decimal).Add(t.Tax.Decimal).Sub(t.Discount.Decimal))
	return t
}
