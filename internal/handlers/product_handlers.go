package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Public Product Handlers ---
//

// GetProducts is the handler for GET /v1/products
func (h *Handlers) GetProducts(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetFeaturedProducts is the handler for GET /v1/products/featured
func (h *Handlers) GetFeaturedProducts(c *gin.Context) {
	products, err := h.Catalog.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// SearchProducts is the handler for GET /v1/products/search?q=
func (h *Handlers) SearchProducts(c *gin.Context) {
	products, err := h.Catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProductsByCategory is the handler for GET /v1/products/category/:category
func (h *Handlers) GetProductsByCategory(c *gin.Context) {
	products, err := h.Catalog.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the handler for GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.Catalog.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}
