package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCategories is the handler for GET /v1/categories (Public)
func (h *Handlers) GetCategories(c *gin.Context) {
	categories, err := h.Catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
