package models

// Category is a product category as the storefront navigation lists it.
// Categories are derived from the products' category column; there is no
// separate table.
type Category struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"productCount"`
}
