package repository

import (
	"context"
	"database/sql"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// Carts is the MySQL CartRepository.
type Carts struct {
	DB *sql.DB
}

// ListByUser returns the user's cart rows joined with their products,
// newest first.
func (r *Carts) ListByUser(ctx context.Context, userID int64) ([]models.CartItemWithProduct, error) {
	query := `
		SELECT
			ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
			` + productColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.created_at DESC, ci.id DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.Backend("list cart", err)
	}
	defer rows.Close()

	items := []models.CartItemWithProduct{}
	for rows.Next() {
		var it models.CartItemWithProduct
		p := &it.Product
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
			&p.ID, &p.Name, &p.Slug, &p.Price, &p.Image, &p.Badge, &p.Featured,
			&p.Category, &p.Stock, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, apperr.Backend("list cart", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Backend("list cart", err)
	}
	return items, nil
}

// Upsert relies on UNIQUE KEY (user_id, product_id): concurrent adds of the
// same product increment one row instead of racing to insert two.
// MySQL reports 1 affected row for an insert and 2 for an update.
func (r *Carts) Upsert(ctx context.Context, userID, productID int64, qty int) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = NOW()`,
		userID, productID, qty)
	if err != nil {
		switch mysqlErrNumber(err) {
		case errNoReferencedRow, errNoReferencedRow2:
			return false, apperr.New(apperr.ErrNotFound, "Product not found")
		}
		return false, apperr.Backend("add to cart", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Backend("add to cart", err)
	}
	return n == 2, nil
}

func (r *Carts) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity = ?, updated_at = NOW() WHERE id = ? AND user_id = ?",
		qty, itemID, userID)
	if err != nil {
		return apperr.Backend("update cart item", err)
	}
	return affectedOrNotFound("update cart item", result, "Cart item")
}

func (r *Carts) Delete(ctx context.Context, userID, itemID int64) error {
	result, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		return apperr.Backend("remove cart item", err)
	}
	return affectedOrNotFound("remove cart item", result, "Cart item")
}

func (r *Carts) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID)
	if err != nil {
		return 0, apperr.Backend("clear cart", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.Backend("clear cart", err)
	}
	return n, nil
}
