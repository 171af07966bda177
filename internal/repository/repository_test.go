package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/money"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var productCols = []string{"id", "name", "slug", "price", "image", "badge", "featured",
	"category", "stock", "description", "created_at", "updated_at"}

func TestCartsListByUserJoinsAndNormalizesPrices(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	cols := append([]string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at"}, productCols...)
	mock.ExpectQuery(`FROM cart_items ci\s+JOIN products p`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(11, 5, 7, 3, now, now, 7, "Mug", "mug", []byte("$12.50"), "/m.png", nil, true, "kitchen", 4, nil, now, now).
			AddRow(10, 5, 8, 1, now, now, 8, "Tee", "tee", []byte("20.00"), "/t.png", "New", false, nil, nil, "Soft", now, now))

	items, err := (&Carts{DB: db}).ListByUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(11), items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "12.50", items[0].Product.Price.StringFixed(2))
	assert.Equal(t, "37.50", items[0].LineTotal().StringFixed(2))
	assert.Nil(t, items[0].Product.Badge)
	require.NotNil(t, items[0].Product.Category)
	assert.Equal(t, "kitchen", *items[0].Product.Category)

	require.NotNil(t, items[1].Product.Badge)
	assert.Equal(t, "New", *items[1].Product.Badge)
	assert.Nil(t, items[1].Product.Stock)
}

func TestCartsListByUserEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM cart_items`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := (&Carts{DB: db}).ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCartsUpsert(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		existed  bool
	}{
		{"insert", 1, false},
		{"increment", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectExec(`INSERT INTO cart_items .* ON DUPLICATE KEY UPDATE\s+quantity = quantity \+ VALUES\(quantity\)`).
				WithArgs(int64(1), int64(7), 2).
				WillReturnResult(sqlmock.NewResult(3, tt.affected))

			existed, err := (&Carts{DB: db}).Upsert(context.Background(), 1, 7, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.existed, existed)
		})
	}
}

func TestCartsUpsertUnknownProduct(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO cart_items`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"})

	_, err := (&Carts{DB: db}).Upsert(context.Background(), 1, 999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCartsWritesAreScopedByOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := &Carts{DB: db}

	mock.ExpectExec(`UPDATE cart_items SET quantity = \?.* WHERE id = \? AND user_id = \?`).
		WithArgs(4, int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateQuantity(context.Background(), 2, 10, 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	mock.ExpectExec(`DELETE FROM cart_items WHERE id = \? AND user_id = \?`).
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), 1, 10))

	mock.ExpectExec(`DELETE FROM cart_items WHERE user_id = \?`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCartsBackendErrorIsWrapped(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM cart_items`).WillReturnError(sql.ErrConnDone)

	err := (&Carts{DB: db}).Delete(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperr.ErrBackend)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestProductsByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM products p WHERE p.id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := (&Products{DB: db}).ByID(context.Background(), 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProductsSearchEscapesWildcards(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`p.name LIKE \? OR p.description LIKE \?`).
		WithArgs(`%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := (&Products{DB: db}).Search(context.Background(), " 50% ")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductsCreateDuplicateSlug(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO products`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := (&Products{DB: db}).Create(context.Background(), &models.Product{Name: "Mug", Slug: "mug", Price: money.MustParse(9)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUsersIsAdmin(t *testing.T) {
	db, mock := newMock(t)
	repo := &Users{DB: db}

	mock.ExpectQuery(`SELECT is_admin FROM users WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(true))
	mock.ExpectQuery(`SELECT is_admin FROM users WHERE id = \?`).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	ok, err := repo.IsAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsAdmin(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := (&Users{DB: db}).Create(context.Background(), &models.User{Email: "Ada@Example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
