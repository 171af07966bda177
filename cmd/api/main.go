package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/storefront-golang/internal/account"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/events"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/money"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/01moynul/storefront-golang/internal/repository"
	"github.com/01moynul/storefront-golang/internal/routes"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 1. --- Main Database Connection ---
	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	cancel()

	// 2. --- Repositories & Services ---
	products := &repository.Products{DB: db}
	carts := &repository.Carts{DB: db}
	users := &repository.Users{DB: db}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	hub := events.NewHub(16)

	// --- Application Setup ---
	app := &handlers.Handlers{
		Accounts: account.NewService(users, issuer),
		Catalog:  catalog.NewService(products, users),
		Cart:     cart.NewService(carts, hub),
		Hub:      hub,
		Rates: pricing.Rates{
			Shipping: money.NewPrice(cfg.Shipping),
			TaxRate:  cfg.TaxRate,
		},
		UploadDir:      cfg.UploadDir,
		BaseURL:        cfg.BaseURL,
		AllowedOrigins: cfg.CORSOrigins,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, issuer, users)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		log.Printf("Starting storefront API server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}
}
