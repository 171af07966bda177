package catalog

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

var exportHeaders = []string{
	"ID", "Name", "Slug", "Price", "Image", "Badge", "Featured",
	"Category", "Stock", "Description", "CreatedAt", "UpdatedAt",
}

// WriteXLSX writes the products as a single-sheet workbook.
func WriteXLSX(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Slug)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(deref(p.Badge))
		row.AddCell().SetValue(p.Featured)
		row.AddCell().SetValue(deref(p.Category))
		if p.Stock != nil {
			row.AddCell().SetValue(*p.Stock)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(deref(p.Description))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}

// Export writes every product to w. Admin only.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return err
	}
	if err := WriteXLSX(w, products); err != nil {
		return apperr.Backend("export products", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
