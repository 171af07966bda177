// Package testutil provides in-memory repositories with the same contracts
// as the MySQL ones (ownership scoping, unique (user, product) cart rows,
// not-found on zero-row writes) for service, handler and client tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/money"
)

// DB is a tiny in-memory database shared by the three repositories.
type DB struct {
	mu       sync.Mutex
	clock    *Clock
	nextID   int64
	products map[int64]models.Product
	carts    map[int64]models.CartItem
	users    map[int64]models.User

	// FailNext, when set, makes the next repository call return it.
	FailNext error
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{
		clock:    NewClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		products: map[int64]models.Product{},
		carts:    map[int64]models.CartItem{},
		users:    map[int64]models.User{},
	}
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *DB) fail() error {
	err := db.FailNext
	db.FailNext = nil
	return err
}

// Fail arms FailNext under the lock.
func (db *DB) Fail(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.FailNext = err
}

// SeedProduct inserts a product with the given id and price.
func (db *DB) SeedProduct(id int64, name string, price any) models.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.clock.Now()
	p := models.Product{ID: id, Name: name, Slug: strings.ToLower(name), Price: money.MustParse(price), CreatedAt: now, UpdatedAt: now}
	db.products[id] = p
	if id > db.nextID {
		db.nextID = id
	}
	return p
}

// CartRows returns all cart rows for a user, for assertions.
func (db *DB) CartRows(userID int64) []models.CartItem {
	db.mu.Lock()
	defer db.mu.Unlock()
	var rows []models.CartItem
	for _, it := range db.carts {
		if it.UserID == userID {
			rows = append(rows, it)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// Products returns the ProductRepository view.
func (db *DB) Products() *Products { return &Products{db} }

// Carts returns the CartRepository view.
func (db *DB) Carts() *Carts { return &Carts{db} }

// Users returns the UserRepository view.
func (db *DB) Users() *Users { return &Users{db} }

// Products is an in-memory repository.ProductRepository.
type Products struct{ db *DB }

func (r *Products) filter(keep func(models.Product) bool) ([]models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range r.db.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Products) List(ctx context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true })
}

func (r *Products) Featured(ctx context.Context) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Featured })
}

func (r *Products) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool {
		return p.Category != nil && strings.EqualFold(*p.Category, strings.TrimSpace(category))
	})
}

func (r *Products) Search(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	return r.filter(func(p models.Product) bool {
		if strings.Contains(strings.ToLower(p.Name), term) {
			return true
		}
		return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), term)
	})
}

func (r *Products) ByID(ctx context.Context, id int64) (models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return models.Product{}, err
	}
	p, ok := r.db.products[id]
	if !ok {
		return models.Product{}, apperr.New(apperr.ErrNotFound, "Product not found")
	}
	return p, nil
}

func (r *Products) Create(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	for _, other := range r.db.products {
		if other.Slug == p.Slug {
			return apperr.New(apperr.ErrValidation, "a product with slug %q already exists", p.Slug)
		}
	}
	now := r.db.clock.Now()
	p.ID = r.db.id()
	p.CreatedAt, p.UpdatedAt = now, now
	r.db.products[p.ID] = *p
	return nil
}

func (r *Products) Update(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	old, ok := r.db.products[p.ID]
	if !ok {
		return apperr.New(apperr.ErrNotFound, "Product not found")
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = r.db.clock.Now()
	r.db.products[p.ID] = *p
	return nil
}

func (r *Products) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	if _, ok := r.db.products[id]; !ok {
		return apperr.New(apperr.ErrNotFound, "Product not found")
	}
	delete(r.db.products, id)
	for cid, it := range r.db.carts {
		if it.ProductID == id {
			delete(r.db.carts, cid)
		}
	}
	return nil
}

// Carts is an in-memory repository.CartRepository.
type Carts struct{ db *DB }

func (r *Carts) ListByUser(ctx context.Context, userID int64) ([]models.CartItemWithProduct, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return nil, err
	}
	items := []models.CartItemWithProduct{}
	for _, it := range r.db.carts {
		if it.UserID != userID {
			continue
		}
		items = append(items, models.CartItemWithProduct{CartItem: it, Product: r.db.products[it.ProductID]})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (r *Carts) Upsert(ctx context.Context, userID, productID int64, qty int) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return false, err
	}
	if _, ok := r.db.products[productID]; !ok {
		return false, apperr.New(apperr.ErrNotFound, "Product not found")
	}
	now := r.db.clock.Now()
	for id, it := range r.db.carts {
		if it.UserID == userID && it.ProductID == productID {
			it.Quantity += qty
			it.UpdatedAt = now
			r.db.carts[id] = it
			return true, nil
		}
	}
	id := r.db.id()
	r.db.carts[id] = models.CartItem{ID: id, UserID: userID, ProductID: productID, Quantity: qty, CreatedAt: now, UpdatedAt: now}
	return false, nil
}

func (r *Carts) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	it, ok := r.db.carts[itemID]
	if !ok || it.UserID != userID {
		return apperr.New(apperr.ErrNotFound, "Cart item not found")
	}
	it.Quantity = qty
	it.UpdatedAt = r.db.clock.Now()
	r.db.carts[itemID] = it
	return nil
}

func (r *Carts) Delete(ctx context.Context, userID, itemID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	it, ok := r.db.carts[itemID]
	if !ok || it.UserID != userID {
		return apperr.New(apperr.ErrNotFound, "Cart item not found")
	}
	delete(r.db.carts, itemID)
	return nil
}

func (r *Carts) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return 0, err
	}
	var n int64
	for id, it := range r.db.carts {
		if it.UserID == userID {
			delete(r.db.carts, id)
			n++
		}
	}
	return n, nil
}

// Users is an in-memory repository.UserRepository.
type Users struct{ db *DB }

func (r *Users) Create(ctx context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	u.Email = strings.ToLower(u.Email)
	for _, other := range r.db.users {
		if other.Email == u.Email {
			return apperr.New(apperr.ErrValidation, "Email is already registered")
		}
	}
	now := r.db.clock.Now()
	u.ID = r.db.id()
	u.CreatedAt, u.UpdatedAt = now, now
	r.db.users[u.ID] = *u
	return nil
}

func (r *Users) ByEmail(ctx context.Context, email string) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return models.User{}, err
	}
	for _, u := range r.db.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return models.User{}, apperr.New(apperr.ErrNotFound, "User not found")
}

func (r *Users) ByID(ctx context.Context, id int64) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return models.User{}, err
	}
	u, ok := r.db.users[id]
	if !ok {
		return models.User{}, apperr.New(apperr.ErrNotFound, "User not found")
	}
	return u, nil
}

func (r *Users) IsAdmin(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return false, err
	}
	return r.db.users[id].IsAdmin, nil
}

func (r *Users) SetAdmin(ctx context.Context, email string, admin bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail(); err != nil {
		return err
	}
	for id, u := range r.db.users {
		if u.Email == strings.ToLower(email) {
			u.IsAdmin = admin
			r.db.users[id] = u
			return nil
		}
	}
	return apperr.New(apperr.ErrNotFound, "User not found")
}
