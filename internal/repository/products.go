package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

const productColumns = `p.id, p.name, p.slug, p.price, p.image, p.badge, p.featured,
	p.category, p.stock, p.description, p.created_at, p.updated_at`

// Products is the MySQL ProductRepository.
type Products struct {
	DB *sql.DB
}

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price, // money.Price normalizes DECIMAL and legacy "$12.99" values
		&p.Image,
		&p.Badge,
		&p.Featured,
		&p.Category,
		&p.Stock,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *Products) query(ctx context.Context, op, query string, args ...any) ([]models.Product, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Backend(op, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, apperr.Backend(op, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Backend(op, err)
	}
	return products, nil
}

func (r *Products) List(ctx context.Context) ([]models.Product, error) {
	return r.query(ctx, "list products",
		"SELECT "+productColumns+" FROM products p ORDER BY p.id ASC")
}

func (r *Products) Featured(ctx context.Context) ([]models.Product, error) {
	return r.query(ctx, "list featured products",
		"SELECT "+productColumns+" FROM products p WHERE p.featured = TRUE ORDER BY p.id ASC")
}

func (r *Products) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.query(ctx, "list products by category",
		"SELECT "+productColumns+" FROM products p WHERE LOWER(p.category) = ? ORDER BY p.id ASC",
		strings.ToLower(strings.TrimSpace(category)))
}

// Search matches the term against name and description.
func (r *Products) Search(ctx context.Context, term string) ([]models.Product, error) {
	like := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	return r.query(ctx, "search products",
		"SELECT "+productColumns+" FROM products p WHERE (p.name LIKE ? OR p.description LIKE ?) ORDER BY p.id ASC",
		like, like)
}

func (r *Products) ByID(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	row := r.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = ?", id)
	if err := scanProduct(row, &p); err != nil {
		return models.Product{}, notFoundOr("get product", err, "Product")
	}
	return p, nil
}

func (r *Products) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	result, err := r.DB.ExecContext(ctx, `
		INSERT INTO products (name, slug, price, image, badge, featured, category, stock, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.Price, p.Image, p.Badge, p.Featured, p.Category, p.Stock, p.Description, now, now)
	if err != nil {
		if mysqlErrNumber(err) == errDuplicateEntry {
			return apperr.New(apperr.ErrValidation, "a product with slug %q already exists", p.Slug)
		}
		return apperr.Backend("create product", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperr.Backend("create product", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *Products) Update(ctx context.Context, p *models.Product) error {
	now := time.Now()
	result, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET name = ?, slug = ?, price = ?, image = ?, badge = ?, featured = ?, category = ?, stock = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Slug, p.Price, p.Image, p.Badge, p.Featured, p.Category, p.Stock, p.Description, now, p.ID)
	if err != nil {
		if mysqlErrNumber(err) == errDuplicateEntry {
			return apperr.New(apperr.ErrValidation, "a product with slug %q already exists", p.Slug)
		}
		return apperr.Backend("update product", err)
	}
	if err := affectedOrNotFound("update product", result, "Product"); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

// Delete removes a product; its cart rows go with it (ON DELETE CASCADE).
func (r *Products) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return apperr.Backend("delete product", err)
	}
	return affectedOrNotFound("delete product", result, "Product")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
