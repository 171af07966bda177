// Package catalog serves product reads to the storefront and product writes
// to the admin panel.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/repository"
)

// AdminChecker answers whether a user carries the is_admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Service is the catalog.
type Service struct {
	Products repository.ProductRepository
	Admins   AdminChecker
}

// NewService wires a catalog Service.
func NewService(products repository.ProductRepository, admins AdminChecker) *Service {
	return &Service{Products: products, Admins: admins}
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.Products.List(ctx)
}

func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	return s.Products.Featured(ctx)
}

func (s *Service) ByID(ctx context.Context, id int64) (models.Product, error) {
	return s.Products.ByID(ctx, id)
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	if strings.TrimSpace(category) == "" {
		return nil, apperr.New(apperr.ErrValidation, "Category is required")
	}
	return s.Products.ByCategory(ctx, category)
}

// Search returns everything for an empty term.
func (s *Service) Search(ctx context.Context, term string) ([]models.Product, error) {
	if strings.TrimSpace(term) == "" {
		return s.Products.List(ctx)
	}
	return s.Products.Search(ctx, term)
}

// Categories lists the distinct product categories with how many products
// each holds, sorted by name. Uncategorized products are not listed.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Count products per category name
	counts := map[string]int{}
	for _, p := range products {
		if p.Category == nil || strings.TrimSpace(*p.Category) == "" {
			continue
		}
		counts[strings.TrimSpace(*p.Category)]++
	}

	// 2. Build the sorted list
	categories := make([]models.Category, 0, len(counts))
	for name, n := range counts {
		categories = append(categories, models.Category{Name: name, Slug: slug.Make(name), ProductCount: n})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// requireAdmin is the authorization guard for every write. The route
// middleware checks the same flag; this keeps the service safe on its own.
func (s *Service) requireAdmin(ctx context.Context) error {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return apperr.ErrUnauthenticated
	}
	isAdmin, err := s.Admins.IsAdmin(ctx, id.ID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperr.New(apperr.ErrUnauthorized, "Admin access required")
	}
	return nil
}

func buildProduct(in models.ProductInput) (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Product{}, apperr.New(apperr.ErrValidation, "Name is required")
	}
	if in.Price.IsNegative() {
		return models.Product{}, apperr.New(apperr.ErrValidation, "Price cannot be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return models.Product{}, apperr.New(apperr.ErrValidation, "Stock cannot be negative")
	}
	return models.Product{
		Name:        name,
		Slug:        slug.Make(name),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Badge:       in.Badge,
		Featured:    in.Featured,
		Category:    in.Category,
		Stock:       in.Stock,
		Description: in.Description,
	}, nil
}

// Create adds a product. Admin only.
func (s *Service) Create(ctx context.Context, in models.ProductInput) (models.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return models.Product{}, err
	}
	p, err := buildProduct(in)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.Products.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update replaces a product's editable fields. Admin only.
func (s *Service) Update(ctx context.Context, id int64, in models.ProductInput) (models.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return models.Product{}, err
	}
	p, err := buildProduct(in)
	if err != nil {
		return models.Product{}, err
	}
	p.ID = id
	if err := s.Products.Update(ctx, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Delete removes a product. Admin only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	return s.Products.Delete(ctx, id)
}
