// Package apitest assembles the full router on top of the in-memory
// repositories, for handler, route and client tests.
package apitest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/storefront-golang/internal/account"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/events"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/internal/testutil"
)

// Env is a wired API over an in-memory database.
type Env struct {
	DB       *testutil.DB
	Hub      *events.Hub
	Issuer   *auth.Issuer
	Accounts *account.Service
	Handlers *handlers.Handlers
	Router   *gin.Engine
}

// New builds an Env. Uploads go to a per-test temp dir.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB()
	hub := events.NewHub(16)
	issuer := auth.NewIssuer("test-secret", time.Hour)
	users := db.Users()

	h := &handlers.Handlers{
		Accounts:       account.NewService(users, issuer),
		Catalog:        catalog.NewService(db.Products(), users),
		Cart:           cart.NewService(db.Carts(), hub),
		Hub:            hub,
		Rates:          pricing.DefaultRates,
		UploadDir:      t.TempDir(),
		BaseURL:        "http://test.local",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	return &Env{
		DB:       db,
		Hub:      hub,
		Issuer:   issuer,
		Accounts: h.Accounts,
		Handlers: h,
		Router:   routes.SetupRouter(h, issuer, users),
	}
}

// Server starts an httptest server for the router and closes it with t.
func (e *Env) Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(e.Router)
	t.Cleanup(srv.Close)
	return srv
}

// User registers an account and returns its id and bearer token.
func (e *Env) User(t *testing.T, email string, admin bool) (int64, string) {
	t.Helper()
	ctx := context.Background()
	session, err := e.Accounts.Register(ctx, account.RegisterInput{
		FullName: "Test User",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	if admin {
		require.NoError(t, e.Accounts.GrantAdmin(ctx, email, true))
	}
	return session.User.ID, session.Token
}

// Do serves one request against the router.
func (e *Env) Do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
