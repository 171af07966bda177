package catalog

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/money"
	"github.com/01moynul/storefront-golang/internal/testutil"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	svc    *Service
	db     *testutil.DB
	admin  context.Context
	member context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB()
	users := db.Users()
	ctx := context.Background()

	admin := &models.User{Email: "admin@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, users.SetAdmin(ctx, admin.Email, true))
	member := &models.User{Email: "member@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, member))

	return fixture{
		svc:    NewService(db.Products(), users),
		db:     db,
		admin:  auth.WithIdentity(ctx, models.Identity{ID: admin.ID, Email: admin.Email}),
		member: auth.WithIdentity(ctx, models.Identity{ID: member.ID, Email: member.Email}),
	}
}

func TestCreateGeneratesSlugAndNormalizesPrice(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.admin, models.ProductInput{
		Name:     "  Café Table Lamp ",
		Price:    money.MustParse("$49.90"),
		Category: strPtr("Lighting"),
		Featured: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Café Table Lamp", p.Name)
	assert.Equal(t, "cafe-table-lamp", p.Slug)
	assert.Equal(t, "49.90", p.Price.StringFixed(2))

	got, err := f.svc.ByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Slug, got.Slug)

	featured, err := f.svc.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	byCat, err := f.svc.ByCategory(context.Background(), "lighting")
	require.NoError(t, err)
	assert.Len(t, byCat, 1)
}

func TestWritesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	in := models.ProductInput{Name: "Mug", Price: money.MustParse(5)}

	_, err := f.svc.Create(f.member, in)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	assert.ErrorIs(t, f.svc.Delete(f.member, 1), apperr.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Export(f.member, &bytes.Buffer{}), apperr.ErrUnauthorized)

	all, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	neg := -1

	tests := []models.ProductInput{
		{Name: " ", Price: money.MustParse(1)},
		{Name: "Mug", Price: money.MustParse("-1")},
		{Name: "Mug", Price: money.MustParse(1), Stock: &neg},
	}
	for _, in := range tests {
		_, err := f.svc.Create(f.admin, in)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(f.admin, models.ProductInput{Name: "Mug", Price: money.MustParse(5)})
	require.NoError(t, err)

	updated, err := f.svc.Update(f.admin, p.ID, models.ProductInput{Name: "Big Mug", Price: money.MustParse(7)})
	require.NoError(t, err)
	assert.Equal(t, "big-mug", updated.Slug)

	_, err = f.svc.Update(f.admin, 999, models.ProductInput{Name: "Ghost", Price: money.MustParse(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.svc.Delete(f.admin, p.ID))
	_, err = f.svc.ByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.admin, models.ProductInput{Name: "Desk Lamp", Price: money.MustParse(30)})
	require.NoError(t, err)
	_, err = f.svc.Create(f.admin, models.ProductInput{Name: "Rug", Price: money.MustParse(80), Description: strPtr("Wool, fits any lamp-lit room")})
	require.NoError(t, err)

	hits, err := f.svc.Search(context.Background(), "lamp")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	all, err := f.svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.ByCategory(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestExportWritesWorkbook(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.admin, models.ProductInput{Name: "Mug", Price: money.MustParse("$5"), Image: "/uploads/mug.png", Badge: strPtr("Sale")})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(f.admin, &buf))

	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	rows := book.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0].Cells[1].Value)
	assert.Equal(t, "Mug", rows[1].Cells[1].Value)
	assert.Equal(t, "5.00", rows[1].Cells[3].Value)
	assert.Equal(t, "Sale", rows[1].Cells[5].Value)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	for _, in := range []models.ProductInput{
		{Name: "Desk Lamp", Price: money.MustParse(30), Category: strPtr("Home Office")},
		{Name: "Floor Lamp", Price: money.MustParse(60), Category: strPtr("Home Office")},
		{Name: "Mug", Price: money.MustParse(5), Category: strPtr("Kitchen")},
		{Name: "Gift Card", Price: money.MustParse(25)},
	} {
		_, err := f.svc.Create(f.admin, in)
		require.NoError(t, err)
	}

	cats, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Category{
		{Name: "Home Office", Slug: "home-office", ProductCount: 2},
		{Name: "Kitchen", Slug: "kitchen", ProductCount: 1},
	}, cats)
}
