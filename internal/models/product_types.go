package models

import (
	"time"

	"github.com/01moynul/storefront-golang/internal/money"
)

// Product is the model for the 'products' table.
// Optional columns are pointers so they serialize as absent rather than "".
type Product struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Slug        string      `json:"slug" db:"slug"`
	Price       money.Price `json:"price" db:"price"`
	Image       string      `json:"image" db:"image"`
	Badge       *string     `json:"badge,omitempty" db:"badge"`
	Featured    bool        `json:"featured" db:"featured"`
	Category    *string     `json:"category,omitempty" db:"category"`
	Stock       *int        `json:"stock,omitempty" db:"stock"`
	Description *string     `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// ProductInput is what the admin panel sends to create or edit a product.
type ProductInput struct {
	Name        string      `json:"name" binding:"required,min=2,max=255"`
	Price       money.Price `json:"price"`
	Image       string      `json:"image" binding:"omitempty,max=512"`
	Badge       *string     `json:"badge,omitempty" binding:"omitempty,max=64"`
	Featured    bool        `json:"featured"`
	Category    *string     `json:"category,omitempty" binding:"omitempty,max=128"`
	Stock       *int        `json:"stock,omitempty" binding:"omitempty,gte=0"`
	Description *string     `json:"description,omitempty"`
}
