package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/middleware"
)

// corsConfig allows the storefront frontend to call us with a bearer token.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// SetupRouter builds the full API. tokens validates bearer tokens and admins
// answers the is_admin lookups for the /v1/admin group.
func SetupRouter(h *handlers.Handlers, tokens middleware.TokenValidator, admins middleware.AdminChecker) *gin.Engine {
	router := gin.Default()

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(cors.New(corsConfig(h.AllowedOrigins)))

	// --- Uploaded product images ---
	if h.UploadDir != "" {
		router.Static("/uploads", h.UploadDir)
	}

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		// --- Public Product Routes ---
		products := v1.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/featured", h.GetFeaturedProducts)
			products.GET("/search", h.SearchProducts)
			products.GET("/category/:category", h.GetProductsByCategory)
			products.GET("/:id", h.GetProduct)
		}

		// --- Category Routes ---
		v1.GET("/categories", h.GetCategories)

		// --- Cart Routes ---
		// Optional auth: the cart service itself decides between an empty
		// cart, 401 and 403 when there is no session.
		cart := v1.Group("/cart")
		cart.Use(middleware.OptionalAuth(tokens))
		{
			cart.GET("", h.GetCart)
			cart.POST("/items", h.AddToCart)
			cart.PUT("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.DeleteCartItem)
			cart.DELETE("", h.ClearCart)
		}

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("")
		auth.Use(middleware.AuthMiddleware(tokens))
		{
			auth.GET("/me", h.Me)
			auth.GET("/cart/events", h.CartEvents)

			auth.GET("/checkout", h.GetCheckout)
			auth.POST("/checkout/confirm", h.ConfirmCheckout)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(tokens))
		admin.Use(middleware.AdminMiddleware(admins))
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.GET("/products/export", h.ExportProducts)
			admin.POST("/uploads", h.UploadFile)
		}
	}

	return router
}
