// Package money normalizes prices to a single decimal representation.
//
// Product prices reach us as DECIMAL columns, legacy VARCHAR columns holding
// strings like "$1,299.00", and JSON numbers or strings from admin forms. All
// of them are parsed here once; everything past the data-access boundary only
// sees Price values. Formatting back to a currency string happens at the
// presentation edge through Format.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is an amount in the store currency, kept to two decimal places.
type Price struct {
	decimal.Decimal
}

// Zero is the zero price.
var Zero = Price{decimal.Zero}

// NewPrice builds a Price from a decimal, rounding to cents.
func NewPrice(d decimal.Decimal) Price {
	return Price{d.Round(2)}
}

// MustParse is Parse for constants and tests.
func MustParse(v any) Price {
	p, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse accepts numbers, decimals and currency-formatted strings.
func Parse(v any) (Price, error) {
	switch x := v.(type) {
	case nil:
		return Zero, nil
	case Price:
		return x, nil
	case decimal.Decimal:
		return NewPrice(x), nil
	case float64:
		return NewPrice(decimal.NewFromFloat(x)), nil
	case float32:
		return NewPrice(decimal.NewFromFloat32(x)), nil
	case int:
		return NewPrice(decimal.NewFromInt(int64(x))), nil
	case int64:
		return NewPrice(decimal.NewFromInt(x)), nil
	case []byte:
		return parseString(string(x))
	case string:
		return parseString(x)
	default:
		return Zero, fmt.Errorf("money: unsupported price type %T", v)
	}
}

func parseString(s string) (Price, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "USD")
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: invalid price %q", s)
	}
	if neg {
		d = d.Neg()
	}
	return NewPrice(d), nil
}

// Mul multiplies the price by an integer quantity.
func (p Price) Mul(qty int) Price {
	return Price{p.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

// Add returns p + o.
func (p Price) Add(o Price) Price {
	return Price{p.Decimal.Add(o.Decimal)}
}

// Format renders the price for display, e.g. "$1299.00".
func (p Price) Format() string {
	if p.IsNegative() {
		return "-$" + p.Abs().StringFixed(2)
	}
	return "$" + p.StringFixed(2)
}

// MarshalJSON writes the price as a number with two decimals.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a currency string.
func (p *Price) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Scan implements sql.Scanner for DECIMAL, numeric and legacy string columns.
func (p *Price) Scan(src any) error {
	parsed, err := Parse(src)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer.
func (p Price) Value() (driver.Value, error) {
	return p.StringFixed(2), nil
}
