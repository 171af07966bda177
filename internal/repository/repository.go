// Package repository is the data-access boundary: every SQL statement the
// storefront runs lives here, and every row leaves it as a model with
// normalized prices.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// ProductRepository reads and writes the catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	Featured(ctx context.Context) ([]models.Product, error)
	ByID(ctx context.Context, id int64) (models.Product, error)
	ByCategory(ctx context.Context, category string) ([]models.Product, error)
	Search(ctx context.Context, term string) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// CartRepository persists cart rows. Every method is scoped by the owning
// user id so one user can never touch another user's rows.
type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.CartItemWithProduct, error)
	// Upsert adds qty to the (user, product) row, creating it if absent.
	// existed reports whether the row was already there.
	Upsert(ctx context.Context, userID, productID int64, qty int) (existed bool, err error)
	UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) error
	Delete(ctx context.Context, userID, itemID int64) error
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

// UserRepository reads and writes accounts.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (models.User, error)
	ByID(ctx context.Context, id int64) (models.User, error)
	IsAdmin(ctx context.Context, id int64) (bool, error)
	SetAdmin(ctx context.Context, email string, admin bool) error
}

// MySQL error numbers we translate.
const (
	errDuplicateEntry   = 1062
	errNoReferencedRow  = 1452
	errNoReferencedRow2 = 1216
)

func mysqlErrNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

// notFoundOr maps sql.ErrNoRows to apperr.ErrNotFound and wraps anything else.
func notFoundOr(op string, err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.ErrNotFound, "%s not found", what)
	}
	return apperr.Backend(op, err)
}

// affectedOrNotFound turns a zero-row write into apperr.ErrNotFound.
func affectedOrNotFound(op string, result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperr.Backend(op, err)
	}
	if n == 0 {
		return apperr.New(apperr.ErrNotFound, "%s not found", what)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
